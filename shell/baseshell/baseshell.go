// Package baseshell provides the output-pump machinery shared by every
// concrete shell: an unbounded multi-producer/single-consumer output
// queue, a single background pump goroutine, and start/stop lifecycle
// with a bounded drain timeout. Input handling is left abstract: embed
// Base and implement the shell.Shell method WriteInput on top of it,
// overriding Cancel/SendInitialOutput as needed (linediscipline does
// exactly this; it keeps Base's Resize).
package baseshell

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kir-gadjello/shellcore/shell"
	"github.com/kir-gadjello/shellcore/shelllog"
)

// DefaultDrainTimeout is the bound Stop waits for the pump to drain
// before forcing it to exit.
const DefaultDrainTimeout = 2 * time.Second

// Hooks lets an embedding shell observe lifecycle transitions without
// overriding Start/Stop themselves.
type Hooks struct {
	// OnStarting runs after the running flag is set and the pump is
	// started; an error here reverts the running flag, closes the queue,
	// joins the pump, and is returned from Start.
	OnStarting func(ctx context.Context, options shell.StartOptions) error
	// OnStopping runs synchronously before the running flag flips false.
	OnStopping func(ctx context.Context)
}

type outputItem struct {
	data       []byte
	outputType shell.OutputType
}

// Base implements the pump/lifecycle half of shell.Shell. It is safe for
// concurrent use; the running flag and queue handle are guarded by mu.
type Base struct {
	metadata shell.Metadata
	hooks    Hooks
	logger   *shelllog.Logger

	mu           sync.Mutex
	running      bool
	terminated   bool
	width        int
	height       int
	queue        *outputQueue
	pumpGroup    *errgroup.Group
	hardStop     chan struct{}

	subMu          sync.Mutex
	nextSub        shell.Subscription
	outputSubs     map[shell.Subscription]shell.OutputSubscriber
	terminatedSubs map[shell.Subscription]shell.TerminatedSubscriber
}

// New constructs a Base for the given metadata. metadata is validated
// eagerly so registration-time validation always observes a consistent
// error.
func New(metadata shell.Metadata, hooks Hooks, logger *shelllog.Logger) (*Base, error) {
	if err := metadata.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = shelllog.Default()
	}
	return &Base{
		metadata:       metadata,
		hooks:          hooks,
		logger:         logger,
		outputSubs:     make(map[shell.Subscription]shell.OutputSubscriber),
		terminatedSubs: make(map[shell.Subscription]shell.TerminatedSubscriber),
	}, nil
}

func (b *Base) Metadata() shell.Metadata { return b.metadata }

func (b *Base) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Start verifies not running, stands up the queue and pump goroutine, then
// calls OnStarting. A failing OnStarting reverts the running flag and
// joins the pump before returning.
func (b *Base) Start(ctx context.Context, options shell.StartOptions) error {
	if err := options.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shell.ErrInvalidArgument, err)
	}

	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return shell.ErrAlreadyRunning
	}
	b.running = true
	b.terminated = false
	b.width, b.height = options.TerminalWidth, options.TerminalHeight
	b.queue = newOutputQueue()
	b.hardStop = make(chan struct{})
	grp, pumpCtx := errgroup.WithContext(context.Background())
	b.pumpGroup = grp
	queue := b.queue
	hardStop := b.hardStop
	b.mu.Unlock()

	grp.Go(func() error {
		b.runPump(pumpCtx, queue, hardStop)
		return nil
	})

	if b.hooks.OnStarting != nil {
		if err := b.hooks.OnStarting(ctx, options); err != nil {
			b.mu.Lock()
			b.running = false
			b.mu.Unlock()
			queue.close()
			_ = grp.Wait()
			return err
		}
	}
	return nil
}

// Stop is an idempotent no-op when not running. Otherwise it runs
// OnStopping, flips running false, closes the queue, awaits the pump with
// DefaultDrainTimeout, then fires exactly one terminated(0, "Stopped").
func (b *Base) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	queue := b.queue
	hardStop := b.hardStop
	grp := b.pumpGroup
	b.mu.Unlock()

	if b.hooks.OnStopping != nil {
		b.hooks.OnStopping(ctx)
	}

	b.mu.Lock()
	b.running = false
	b.mu.Unlock()

	queue.close()

	done := make(chan struct{})
	go func() {
		_ = grp.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(DefaultDrainTimeout):
		b.logger.Printf("baseshell: drain timed out after %s, forcing pump exit", DefaultDrainTimeout)
		close(hardStop)
		<-done
	}

	b.mu.Lock()
	b.terminated = true
	b.mu.Unlock()

	b.publishTerminated(shell.TerminatedEvent{ExitCode: 0, Reason: "Stopped"})
	return nil
}

// EnqueueOutput hands bytes to the output queue for the pump to emit as an
// OutputEvent. Calling it after Stop has closed the queue for this run is
// silently dropped; producers own not calling after stop.
func (b *Base) EnqueueOutput(data []byte, outputType shell.OutputType) {
	b.mu.Lock()
	queue := b.queue
	b.mu.Unlock()
	if queue == nil {
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	queue.push(outputItem{data: cp, outputType: outputType})
}

// EnqueueOutputString is the UTF-8 string convenience form of EnqueueOutput.
func (b *Base) EnqueueOutputString(text string, outputType shell.OutputType) {
	b.EnqueueOutput([]byte(text), outputType)
}

func (b *Base) runPump(ctx context.Context, queue *outputQueue, hardStop chan struct{}) {
	for {
		items, done := queue.drain()
		for _, item := range items {
			b.publishOutput(shell.OutputEvent{Data: item.data, OutputType: item.outputType})
		}
		if done {
			return
		}
		select {
		case <-queue.notify:
		case <-hardStop:
			items, _ := queue.drain()
			for _, item := range items {
				b.publishOutput(shell.OutputEvent{Data: item.data, OutputType: item.outputType})
			}
			return
		}
	}
}

func (b *Base) publishOutput(ev shell.OutputEvent) {
	b.subMu.Lock()
	subs := make([]shell.OutputSubscriber, 0, len(b.outputSubs))
	for _, s := range b.outputSubs {
		subs = append(subs, s)
	}
	b.subMu.Unlock()

	for _, s := range subs {
		b.invokeOutput(s, ev)
	}
}

// invokeOutput runs one subscriber and recovers any panic so that a faulty
// subscriber never interrupts the remaining subscribers or the pump.
func (b *Base) invokeOutput(s shell.OutputSubscriber, ev shell.OutputEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Printf("baseshell: output subscriber panicked: %v", r)
		}
	}()
	s(ev)
}

func (b *Base) publishTerminated(ev shell.TerminatedEvent) {
	b.subMu.Lock()
	subs := make([]shell.TerminatedSubscriber, 0, len(b.terminatedSubs))
	for _, s := range b.terminatedSubs {
		subs = append(subs, s)
	}
	b.subMu.Unlock()

	for _, s := range subs {
		b.invokeTerminated(s, ev)
	}
}

func (b *Base) invokeTerminated(s shell.TerminatedSubscriber, ev shell.TerminatedEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Printf("baseshell: terminated subscriber panicked: %v", r)
		}
	}()
	s(ev)
}

func (b *Base) SubscribeOutput(s shell.OutputSubscriber) shell.Subscription {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.nextSub++
	tok := b.nextSub
	b.outputSubs[tok] = s
	return tok
}

func (b *Base) UnsubscribeOutput(tok shell.Subscription) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	delete(b.outputSubs, tok)
}

func (b *Base) SubscribeTerminated(s shell.TerminatedSubscriber) shell.Subscription {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.nextSub++
	tok := b.nextSub
	b.terminatedSubs[tok] = s
	return tok
}

func (b *Base) UnsubscribeTerminated(tok shell.Subscription) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	delete(b.terminatedSubs, tok)
}

// Resize stores new terminal dimensions; the base layer does not interpret
// them beyond recording.
func (b *Base) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
}

// Dimensions returns the last dimensions recorded via Start or Resize.
func (b *Base) Dimensions() (width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// Cancel is a no-op at the base layer; linediscipline overrides it.
func (b *Base) Cancel() {}

// SendInitialOutput is a no-op at the base layer; subclasses override it.
func (b *Base) SendInitialOutput() {}
