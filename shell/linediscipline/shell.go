// Package linediscipline implements a per-byte input state machine: an
// editable line buffer with cursor-tracked insertion/deletion, history
// recall with saved-draft restore, Ctrl+W word-left kill, Ctrl+C cancel,
// Ctrl+L clear-screen, and CSI escape sequence parsing, all emitting
// fixed, deterministic echo bytes. It extends baseshell.Base, which
// supplies the output pump and lifecycle; this package owns input
// handling exclusively.
package linediscipline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kir-gadjello/shellcore/shell"
	"github.com/kir-gadjello/shellcore/shell/baseshell"
	"github.com/kir-gadjello/shellcore/shelllog"
)

const defaultPrompt = "$ "

// Shell is a shell.Shell that turns input bytes into edited command
// lines. All mutable line state is guarded by mu, held for the duration
// of one WriteInput call so concurrent writers are linearized.
type Shell struct {
	*baseshell.Base

	opts     Options
	executor CommandExecutor
	logger   *shelllog.Logger

	mu     sync.Mutex
	line   []byte
	cursor int
	hist   *history
	esc    escapeParser
}

// New builds a line-discipline shell around the given metadata and
// command executor. opts.MaxHistorySize <= 0 is normalized to the
// package default.
func New(metadata shell.Metadata, executor CommandExecutor, opts Options, logger *shelllog.Logger) (*Shell, error) {
	if executor == nil {
		return nil, fmt.Errorf("%w: executor must not be nil", shell.ErrInvalidArgument)
	}
	if opts.MaxHistorySize <= 0 {
		opts.MaxHistorySize = defaultMaxHistorySize
	}

	sh := &Shell{
		opts:     opts,
		executor: executor,
		logger:   logger,
		hist:     newHistory(opts.MaxHistorySize),
	}

	hooks := baseshell.Hooks{
		OnStarting: func(ctx context.Context, o shell.StartOptions) error {
			if h, ok := executor.(StartHook); ok {
				return h.OnStarting(ctx, o)
			}
			return nil
		},
		OnStopping: func(ctx context.Context) {
			if h, ok := executor.(StopHook); ok {
				h.OnStopping(ctx)
			}
		},
	}

	base, err := baseshell.New(metadata, hooks, logger)
	if err != nil {
		return nil, err
	}
	sh.Base = base
	return sh, nil
}

// WriteInput feeds bytes through the per-byte state machine, one at a
// time, under the line-state lock. Fails with shell.ErrNotRunning if the
// shell isn't running.
func (s *Shell) WriteInput(data []byte) error {
	if !s.Running() {
		return shell.ErrNotRunning
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range data {
		s.handleByte(b)
	}
	return nil
}

// Cancel clears the current edit line and echoes ^C.
func (s *Shell) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLineLocked()
}

// SendInitialOutput emits the banner (if any) followed by the prompt. It
// keeps no record of earlier calls; each call emits both again.
func (s *Shell) SendInitialOutput() {
	if banner, ok := s.bannerTextLocked(); ok && banner != "" {
		s.EnqueueOutputString(banner, shell.Stdout)
	}
	s.SendPrompt()
}

// SendPrompt emits the current prompt text. Subclasses call this once an
// asynchronous command finishes. It bypasses the EchoInput gate: the
// prompt is program output, not an echo of a keystroke.
func (s *Shell) SendPrompt() {
	if s.opts.EmitPromptMarkers {
		s.EnqueueOutputString("\x1b]133;A\x07", shell.Stdout)
	}
	s.EnqueueOutputString(s.promptTextLocked(), shell.Stdout)
}

func (s *Shell) promptTextLocked() string {
	if pp, ok := s.executor.(PromptProvider); ok {
		return pp.GetPrompt()
	}
	return defaultPrompt
}

func (s *Shell) bannerTextLocked() (string, bool) {
	if bp, ok := s.executor.(BannerProvider); ok {
		return bp.GetBanner()
	}
	return "", false
}

// echo writes a reaction to an input byte (arrow-key acks, redraws,
// ^C/^L banners) to the output queue, subject to Options.EchoInput.
func (s *Shell) echo(text string) {
	if !s.opts.EchoInput || text == "" {
		return
	}
	s.EnqueueOutputString(text, shell.Stdout)
}

func (s *Shell) redrawLine() {
	s.echo("\r" + s.promptTextLocked() + string(s.line) + escEraseToEOL)
}

// handleByte never panics outward: malformed escape sequences abort and
// resume normal processing at the next byte.
func (s *Shell) handleByte(b byte) {
	if s.opts.ParseEscapeSequences {
		if act, consumed := s.esc.step(b); consumed {
			s.dispatch(act)
			return
		}
	} else if b == 0x1B {
		return
	}

	switch b {
	case 0x0D, 0x0A:
		s.onEnter()
	case 0x08, 0x7F:
		s.onBackspace()
	case 0x0C:
		s.onClearScreen()
	case 0x03:
		s.cancelLineLocked()
	case 0x17:
		s.onWordKill()
	default:
		if b >= 0x20 && b <= 0x7E {
			s.onInsert(b)
		}
		// else: discard silently (no UTF-8 decoding, ASCII control chars
		// other than the ones handled above are ignored).
	}
}

func (s *Shell) dispatch(act action) {
	switch act {
	case actionHistoryPrev:
		s.onHistoryPrev()
	case actionHistoryNext:
		s.onHistoryNext()
	case actionCursorLeft:
		s.onCursorLeft()
	case actionCursorRight:
		s.onCursorRight()
	case actionHome:
		s.onHome()
	case actionEnd:
		s.onEnd()
	case actionDeleteForward:
		s.onDeleteForward()
	}
}

func (s *Shell) onCursorLeft() {
	if s.cursor == 0 {
		return
	}
	s.cursor--
	s.echo(csiStep('D'))
}

func (s *Shell) onCursorRight() {
	if s.cursor == len(s.line) {
		return
	}
	s.cursor++
	s.echo(csiStep('C'))
}

func (s *Shell) onHome() {
	n := s.cursor
	s.cursor = 0
	s.echo(csiN(n, 'D'))
}

func (s *Shell) onEnd() {
	n := len(s.line) - s.cursor
	s.cursor = len(s.line)
	s.echo(csiN(n, 'C'))
}

func (s *Shell) onBackspace() {
	if s.cursor == 0 {
		return
	}
	s.line = append(s.line[:s.cursor-1], s.line[s.cursor:]...)
	s.cursor--
	tail := append([]byte(nil), s.line[s.cursor:]...)
	s.echo(csiStep('D') + string(tail) + " " + csiN(len(tail)+1, 'D'))
}

func (s *Shell) onDeleteForward() {
	if s.cursor >= len(s.line) {
		return
	}
	s.line = append(s.line[:s.cursor], s.line[s.cursor+1:]...)
	tail := append([]byte(nil), s.line[s.cursor:]...)
	s.echo(string(tail) + " " + csiN(len(tail)+1, 'D'))
}

func (s *Shell) onInsert(b byte) {
	if s.cursor == len(s.line) {
		s.line = append(s.line, b)
		s.cursor++
		s.echo(string(b))
		return
	}
	s.line = append(s.line, 0)
	copy(s.line[s.cursor+1:], s.line[s.cursor:])
	s.line[s.cursor] = b
	s.cursor++
	tail := append([]byte(nil), s.line[s.cursor:]...)
	s.echo(string(b) + string(tail) + csiN(len(tail), 'D'))
}

func (s *Shell) onWordKill() {
	idx := s.cursor
	for idx > 0 && s.line[idx-1] == ' ' {
		idx--
	}
	for idx > 0 && s.line[idx-1] != ' ' {
		idx--
	}
	deleted := s.cursor - idx
	if deleted == 0 {
		return
	}
	s.line = append(s.line[:idx], s.line[s.cursor:]...)
	s.cursor = idx
	tail := append([]byte(nil), s.line[s.cursor:]...)

	echoed := csiN(deleted, 'D') + string(tail)
	for i := 0; i < deleted; i++ {
		echoed += " "
	}
	echoed += csiN(len(tail)+deleted, 'D')
	s.echo(echoed)
}

func (s *Shell) onHistoryPrev() {
	if !s.opts.EnableHistory {
		return
	}
	line, cursor, ok := s.hist.prev(string(s.line), s.cursor)
	if !ok {
		return
	}
	s.line = []byte(line)
	s.cursor = cursor
	s.redrawLine()
}

func (s *Shell) onHistoryNext() {
	if !s.opts.EnableHistory {
		return
	}
	line, cursor, ok := s.hist.next()
	if !ok {
		return
	}
	s.line = []byte(line)
	s.cursor = cursor
	s.redrawLine()
}

func (s *Shell) onEnter() {
	trimmed := strings.TrimSpace(string(s.line))
	s.echo("\r\n")

	if trimmed == "" {
		s.resetLineLocked()
		return
	}

	if s.opts.EnableHistory {
		s.hist.append(trimmed)
	}
	s.hist.resetNavigation()
	s.resetLineLocked()
	s.runExecutor(trimmed)
}

func (s *Shell) resetLineLocked() {
	s.line = s.line[:0]
	s.cursor = 0
}

func (s *Shell) cancelLineLocked() {
	s.echo(escCtrlC)
	s.line = s.line[:0]
	s.cursor = 0
	s.hist.resetNavigation()
	s.echo(s.promptTextLocked())
}

func (s *Shell) onClearScreen() {
	if cs, ok := s.executor.(ScreenClearer); ok {
		cs.HandleClearScreen(s)
	} else {
		s.echo(escClearScreen)
	}
	s.echo(s.promptTextLocked() + string(s.line))
}

// runExecutor invokes the CommandExecutor, converting a panic or returned
// error into a red-foreground stderr line without letting a faulty
// executor take the shell down or block future input.
func (s *Shell) runExecutor(line string) {
	if s.opts.EmitPromptMarkers {
		s.EnqueueOutputString("\x1b]133;C\x07", shell.Stdout)
	}
	err := s.safeExecute(line)
	if s.opts.EmitPromptMarkers {
		code := 0
		if err != nil {
			code = 1
		}
		s.EnqueueOutputString(fmt.Sprintf("\x1b]133;D;%d\x07", code), shell.Stdout)
	}
	if err != nil {
		msg := fmt.Sprintf("Error: %s", err.Error())
		s.EnqueueOutputString("\x1b[31m"+msg+"\x1b[0m\r\n", shell.Stderr)
		s.SendPrompt()
	}
}

func (s *Shell) safeExecute(line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.executor.ExecuteCommandLine(s, line)
}
