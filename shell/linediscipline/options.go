package linediscipline

// Options configures the per-byte input state machine. The zero value is
// not valid; use DefaultOptions.
type Options struct {
	// MaxHistorySize bounds the number of remembered command lines.
	// Oldest entries are evicted first once the cap is reached.
	MaxHistorySize int
	// EchoInput, when false, suppresses every echo byte the editor would
	// otherwise write back (arrow-key acks, redraw sequences, ^C/^L
	// banners). The line buffer is still maintained either way.
	EchoInput bool
	// EnableHistory, when false, disables Up/Down recall and Enter no
	// longer appends to history.
	EnableHistory bool
	// ParseEscapeSequences, when false, discards ESC as an unrecognized
	// byte; the bytes that would have followed it in a CSI sequence are
	// handled as ordinary input (printable ones such as '[' are inserted),
	// matching "raw mode" terminals that don't send arrow keys.
	ParseEscapeSequences bool
	// EmitPromptMarkers enables OSC 133 prompt/command boundary markers
	// around SendPrompt/command execution. Off by default; does not alter
	// any echo byte sequence when disabled.
	EmitPromptMarkers bool
}

const defaultMaxHistorySize = 100

// DefaultOptions returns the line discipline's normal cooked-mode
// configuration.
func DefaultOptions() Options {
	return Options{
		MaxHistorySize:       defaultMaxHistorySize,
		EchoInput:            true,
		EnableHistory:        true,
		ParseEscapeSequences: true,
	}
}

// RawOptions returns a "raw mode" preset: printable bytes still collect
// into a line and Enter still executes, but echo, history, and escape
// parsing are all off.
func RawOptions() Options {
	return Options{
		MaxHistorySize:       defaultMaxHistorySize,
		EchoInput:            false,
		EnableHistory:        false,
		ParseEscapeSequences: false,
	}
}
