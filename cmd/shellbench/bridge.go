package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kir-gadjello/shellcore/shell"
)

var headerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFF")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1)

// outputMsg carries one OutputEvent from the shell's pump into the
// bubbletea event loop: subscribe to the shell, then forward each event
// via tea.Program.Send.
type outputMsg shell.OutputEvent

// terminatedMsg signals the shell's single TerminatedEvent.
type terminatedMsg shell.TerminatedEvent

// bridgeModel is the tea.Model that renders a running shell's output into
// a scrollable viewport and forwards keystrokes back into it byte-by-byte.
type bridgeModel struct {
	sh       shell.Shell
	vp       viewport.Model
	lines    []string
	ready    bool
	quitting bool
	done     bool
}

func newBridgeModel(sh shell.Shell) bridgeModel {
	return bridgeModel{sh: sh}
}

func (m bridgeModel) Init() tea.Cmd {
	return nil
}

func (m bridgeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(headerStyle.Render("shellbench"))
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight
		}
		m.sh.Resize(msg.Width, msg.Height)
		m.vp.SetContent(strings.Join(m.lines, ""))

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlD {
			m.quitting = true
			return m, tea.Quit
		}
		if b := keyMsgToBytes(msg); len(b) > 0 {
			_ = m.sh.WriteInput(b)
		}

	case outputMsg:
		m.lines = append(m.lines, string(msg.Data))
		m.vp.SetContent(strings.Join(m.lines, ""))
		m.vp.GotoBottom()

	case terminatedMsg:
		m.done = true
		m.lines = append(m.lines, fmt.Sprintf("\r\n[terminated: exit=%d reason=%s]\r\n", msg.ExitCode, msg.Reason))
		m.vp.SetContent(strings.Join(m.lines, ""))
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m bridgeModel) View() string {
	if !m.ready {
		return "initializing..."
	}
	if m.quitting {
		return ""
	}
	header := headerStyle.Render(fmt.Sprintf("shellbench: %s", m.sh.Metadata().Name))
	return header + "\n" + m.vp.View()
}

// keyMsgToBytes translates a bubbletea key event back into the raw bytes
// the line-discipline state machine expects, since bubbletea's own
// terminal handling already consumes the real raw mode and hands us
// parsed keys instead of bytes.
func keyMsgToBytes(msg tea.KeyMsg) []byte {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		return []byte(string(msg.Runes))
	case tea.KeyEnter:
		return []byte("\r")
	case tea.KeyBackspace:
		return []byte{0x7F}
	case tea.KeyCtrlC:
		return []byte{0x03}
	case tea.KeyCtrlW:
		return []byte{0x17}
	case tea.KeyCtrlL:
		return []byte{0x0C}
	case tea.KeyLeft:
		return []byte("\x1b[D")
	case tea.KeyRight:
		return []byte("\x1b[C")
	case tea.KeyHome:
		return []byte("\x1b[H")
	case tea.KeyEnd:
		return []byte("\x1b[F")
	case tea.KeyDelete:
		return []byte("\x1b[3~")
	case tea.KeyUp:
		return []byte("\x1b[A")
	case tea.KeyDown:
		return []byte("\x1b[B")
	case tea.KeyTab:
		return []byte{'\t'}
	default:
		return nil
	}
}

// runBridge starts sh, wires its output/terminated events into a
// bubbletea program, and blocks until the program exits, then stops sh.
// ctx is passed to Start and Stop only; it does not end the program.
func runBridge(ctx context.Context, sh shell.Shell, startOpts shell.StartOptions) error {
	if err := sh.Start(ctx, startOpts); err != nil {
		return fmt.Errorf("shellbench: start: %w", err)
	}

	m := newBridgeModel(sh)
	p := tea.NewProgram(m, tea.WithAltScreen())

	outSub := sh.SubscribeOutput(func(ev shell.OutputEvent) {
		p.Send(outputMsg(ev))
	})
	termSub := sh.SubscribeTerminated(func(ev shell.TerminatedEvent) {
		p.Send(terminatedMsg(ev))
	})
	defer sh.UnsubscribeOutput(outSub)
	defer sh.UnsubscribeTerminated(termSub)

	sh.SendInitialOutput()

	_, err := p.Run()
	_ = sh.Stop(ctx)
	return err
}
