// Package shell defines the capability surface a custom shell exposes to
// its host: metadata, start/stop lifecycle, input/resize/cancel, and the
// two event streams (output, terminated) a terminal bridge subscribes to.
package shell

import (
	"context"
	"errors"
)

// Sentinel lifecycle errors. Wrap with fmt.Errorf("%w: ...") for context;
// callers should use errors.Is against these.
var (
	ErrAlreadyRunning  = errors.New("shell: already running")
	ErrNotRunning      = errors.New("shell: not running")
	ErrDisposed        = errors.New("shell: disposed")
	ErrInvalidArgument = errors.New("shell: invalid argument")
)

// OutputType distinguishes stdout-like output from stderr-like output on
// an OutputEvent.
type OutputType int

const (
	Stdout OutputType = iota
	Stderr
)

func (t OutputType) String() string {
	switch t {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Metadata is an immutable descriptor a shell constructs once and never
// mutates. Id must be non-empty and unique across a registry; Name must be
// non-empty.
type Metadata struct {
	ID                 string
	Name               string
	Description        string
	Version            Version
	Author             string
	SupportedFeatures  []string
}

// Validate checks that required metadata fields are present.
func (m Metadata) Validate() error {
	if m.ID == "" {
		return errors.New("shell: metadata id must not be empty")
	}
	if m.Name == "" {
		return errors.New("shell: metadata name must not be empty")
	}
	return nil
}

// Version is a semantic major.minor.patch triple.
type Version struct {
	Major, Minor, Patch int
}

// StartOptions carries host-supplied parameters into Start. Dimensions
// must be positive.
type StartOptions struct {
	TerminalWidth    int
	TerminalHeight   int
	WorkingDirectory string
	Environment      map[string]string
}

// Validate checks the precondition Start must enforce.
func (o StartOptions) Validate() error {
	if o.TerminalWidth <= 0 || o.TerminalHeight <= 0 {
		return errors.New("shell: terminal_width and terminal_height must be positive")
	}
	return nil
}

// OutputEvent is a single emission from a shell's output pump. Data may be
// empty only when used as a tombstone in tests. Consumers own their copy;
// implementations must not retain or mutate the slice after delivery.
type OutputEvent struct {
	Data       []byte
	OutputType OutputType
}

// TerminatedEvent fires exactly once during the lifetime of a started
// shell, when it transitions out of the running state.
type TerminatedEvent struct {
	ExitCode int
	Reason   string
}

// OutputSubscriber receives OutputEvents in pump-enqueue order, from the
// shell's single pump goroutine. A panic/error from a subscriber must never
// stop delivery to the remaining subscribers; Shell implementations are
// responsible for isolating subscriber faults.
type OutputSubscriber func(OutputEvent)

// TerminatedSubscriber receives the single TerminatedEvent for a shell's
// run, invoked from whichever goroutine calls Stop.
type TerminatedSubscriber func(TerminatedEvent)

// Subscription is an opaque token returned by Subscribe*, passed back to
// Unsubscribe*.
type Subscription int

// Shell is the capability surface a custom shell exposes. Implementations
// are built up through baseshell -> linediscipline -> a concrete shell;
// callers normally only see this interface.
type Shell interface {
	// Metadata returns the shell's constant descriptor. Pure; safe to call
	// at any time, running or not.
	Metadata() Metadata

	// Running reports whether the shell is between a successful Start and
	// its matching Stop.
	Running() bool

	// Start transitions Created/Terminated -> Running. Fails with
	// ErrAlreadyRunning if already running, or ErrInvalidArgument if
	// options fail StartOptions.Validate.
	Start(ctx context.Context, options StartOptions) error

	// Stop transitions Running -> Terminated. A no-op, returning nil
	// immediately, if not running. Otherwise drains the output queue with
	// a bounded timeout and fires exactly one TerminatedEvent.
	Stop(ctx context.Context) error

	// WriteInput hands bytes to the shell's input handler. Fails with
	// ErrNotRunning if not running.
	WriteInput(data []byte) error

	// Resize stores new terminal dimensions. Safe to call whether or not
	// running; the base implementation treats it as a no-op beyond
	// recording the values.
	Resize(width, height int)

	// Cancel requests cooperative cancellation of any in-flight command.
	// Default behavior is a no-op; linediscipline overrides it to clear
	// the current edit line.
	Cancel()

	// SendInitialOutput is a one-shot hook the host calls exactly once,
	// after subscribing to output events but after Start completes.
	SendInitialOutput()

	// SubscribeOutput registers a subscriber invoked on every OutputEvent.
	SubscribeOutput(OutputSubscriber) Subscription
	// UnsubscribeOutput removes a previously registered output subscriber.
	UnsubscribeOutput(Subscription)

	// SubscribeTerminated registers a subscriber invoked with the shell's
	// single TerminatedEvent.
	SubscribeTerminated(TerminatedSubscriber) Subscription
	// UnsubscribeTerminated removes a previously registered subscriber.
	UnsubscribeTerminated(Subscription)
}
