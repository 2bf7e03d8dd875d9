package linediscipline

import (
	"context"

	"github.com/kir-gadjello/shellcore/shell"
)

// CommandExecutor is the one required hook: turning a trimmed command
// line into output. Implementations are expected to enqueue their output
// via the embedded *Shell's EnqueueOutput/EnqueueOutputString and, once
// the command has finished (possibly asynchronously), call SendPrompt.
type CommandExecutor interface {
	ExecuteCommandLine(sh *Shell, line string) error
}

// PromptProvider overrides the default "$ " prompt.
type PromptProvider interface {
	GetPrompt() string
}

// BannerProvider supplies a banner emitted once by SendInitialOutput.
type BannerProvider interface {
	GetBanner() (banner string, ok bool)
}

// ScreenClearer overrides the default Ctrl+L behavior (ESC[2J ESC[H); a
// game shell might instead emit ESC[3J to also clear scrollback.
type ScreenClearer interface {
	HandleClearScreen(sh *Shell)
}

// StartHook lets a CommandExecutor participate in Start, e.g. to verify
// an external collaborator is available before the shell reports running.
type StartHook interface {
	OnStarting(ctx context.Context, options shell.StartOptions) error
}

// StopHook lets a CommandExecutor run cleanup before the shell stops.
type StopHook interface {
	OnStopping(ctx context.Context)
}
