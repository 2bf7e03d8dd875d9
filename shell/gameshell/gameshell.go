// Package gameshell is a reference concrete shell: a line-discipline
// shell that hands trimmed command lines to an external command
// interpreter (the "host command processor") and forwards its output
// back, tagging error output with a red-foreground ANSI prefix.
package gameshell

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"

	"github.com/kir-gadjello/shellcore/shell"
	"github.com/kir-gadjello/shellcore/shell/linediscipline"
	"github.com/kir-gadjello/shellcore/shellconfig"
	"github.com/kir-gadjello/shellcore/shelllog"
)

const (
	clearScrollbackSeq = "\x1b[3J\x1b[2J\x1b[H"
	defaultPrompt      = "game> "
)

// executionMu enforces at most one interpreter command executing at a
// time across the whole host process: every GameShell's
// ExecuteCommandLine holds it around its Interpreter.Execute call,
// regardless of which instance invoked it or how many share the same
// Interpreter. The local built-ins ("clear", "copy") do not take it.
var executionMu sync.Mutex

// activeMu guards active, the process-wide "currently active shell"
// slot used to route a shared Interpreter's output events back to
// whichever GameShell is currently executing a command.
var activeMu sync.Mutex
var active *GameShell

// Config configures a GameShell's prompt sourcing.
type Config struct {
	// ConfigPath, if non-empty, is loaded via shellconfig.Load on start
	// for an optional game_shell_prompt override.
	ConfigPath string
	// DefaultPrompt is used when ConfigPath is empty, missing, or has no
	// game_shell_prompt set.
	DefaultPrompt string
}

// GameShell glues a *linediscipline.Shell to an Interpreter.
type GameShell struct {
	*linediscipline.Shell

	interpreter Interpreter
	cfg         Config
	logger      *shelllog.Logger
	unsubscribe func()

	promptMu sync.Mutex
	prompt   string

	outMu      sync.Mutex
	lastOutput string
	sawError   bool
}

// New builds a GameShell. interpreter may be nil at construction time;
// Start fails if it's still nil when the shell starts.
func New(metadata shell.Metadata, interpreter Interpreter, cfg Config, logger *shelllog.Logger) (*GameShell, error) {
	if logger == nil {
		logger = shelllog.Default()
	}
	if cfg.DefaultPrompt == "" {
		cfg.DefaultPrompt = defaultPrompt
	}

	g := &GameShell{
		interpreter: interpreter,
		cfg:         cfg,
		logger:      logger,
		prompt:      cfg.DefaultPrompt,
	}

	ld, err := linediscipline.New(metadata, g, linediscipline.DefaultOptions(), logger)
	if err != nil {
		return nil, err
	}
	g.Shell = ld
	return g, nil
}

// OnStarting implements linediscipline.StartHook: it requires a non-nil
// interpreter, loads the persisted prompt (falling back to the default
// on any load failure), and subscribes to interpreter output.
func (g *GameShell) OnStarting(ctx context.Context, options shell.StartOptions) error {
	if g.interpreter == nil {
		return fmt.Errorf("%w: gameshell requires a non-nil interpreter", shell.ErrInvalidArgument)
	}

	if g.cfg.ConfigPath != "" {
		cfg, err := shellconfig.Load(g.cfg.ConfigPath)
		if err != nil {
			g.logger.Printf("gameshell: failed to load config from %s, using default prompt: %v", g.cfg.ConfigPath, err)
		} else {
			g.promptMu.Lock()
			g.prompt = cfg.PromptOr(g.cfg.DefaultPrompt)
			g.promptMu.Unlock()
		}
	}

	g.unsubscribe = g.interpreter.Subscribe(g.handleInterpreterOutput)
	return nil
}

// OnStopping implements linediscipline.StopHook: unsubscribes from the
// interpreter's output stream.
func (g *GameShell) OnStopping(ctx context.Context) {
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

// GetPrompt implements linediscipline.PromptProvider.
func (g *GameShell) GetPrompt() string {
	g.promptMu.Lock()
	defer g.promptMu.Unlock()
	return g.prompt
}

// HandleClearScreen implements linediscipline.ScreenClearer, overriding
// the default Ctrl+L behavior to also clear scrollback.
func (g *GameShell) HandleClearScreen(sh *linediscipline.Shell) {
	sh.EnqueueOutputString(clearScrollbackSeq, shell.Stdout)
}

// ExecuteCommandLine implements linediscipline.CommandExecutor. It
// recognizes two local built-ins ("clear", "copy") before handing
// anything else to the interpreter.
func (g *GameShell) ExecuteCommandLine(sh *linediscipline.Shell, line string) error {
	trimmed := strings.TrimSpace(line)

	switch trimmed {
	case "clear":
		sh.EnqueueOutputString(clearScrollbackSeq, shell.Stdout)
		sh.SendPrompt()
		return nil
	case "copy":
		g.outMu.Lock()
		last := g.lastOutput
		g.outMu.Unlock()
		if err := clipboard.WriteAll(last); err != nil {
			sh.EnqueueOutputString(fmt.Sprintf("copy failed: %v\r\n", err), shell.Stderr)
		} else {
			sh.EnqueueOutputString("copied last output to clipboard\r\n", shell.Stdout)
		}
		sh.SendPrompt()
		return nil
	}

	executionMu.Lock()
	defer executionMu.Unlock()

	g.outMu.Lock()
	g.sawError = false
	g.outMu.Unlock()

	activeMu.Lock()
	active = g
	activeMu.Unlock()

	ok := g.interpreter.Execute(trimmed)

	activeMu.Lock()
	active = nil
	activeMu.Unlock()

	g.outMu.Lock()
	sawError := g.sawError
	g.outMu.Unlock()

	if !ok && !sawError {
		red := color.New(color.FgRed)
		red.EnableColor()
		sh.EnqueueOutputString(red.Sprintf("command failed: %s", trimmed)+"\r\n", shell.Stderr)
	}

	sh.SendPrompt()
	return nil
}

// handleInterpreterOutput is the Interpreter subscription callback.
// Interpreters may be shared across several GameShell instances, so it
// checks the active-shell slot and only forwards output if this instance
// is the one currently executing a command.
func (g *GameShell) handleInterpreterOutput(text string, kind OutputKind) {
	activeMu.Lock()
	isActive := active == g
	activeMu.Unlock()
	if !isActive {
		return
	}

	g.outMu.Lock()
	g.lastOutput = text
	if kind == Error {
		g.sawError = true
	}
	g.outMu.Unlock()

	if kind == Error {
		red := color.New(color.FgRed)
		red.EnableColor()
		g.Shell.EnqueueOutputString(red.Sprint(text)+"\r\n", shell.Stderr)
		return
	}
	g.Shell.EnqueueOutputString(text+"\r\n", shell.Stdout)
}
