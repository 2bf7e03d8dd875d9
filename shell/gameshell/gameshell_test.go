package gameshell

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kir-gadjello/shellcore/shell"
	"github.com/kir-gadjello/shellcore/shelllog"
)

// fakeInterpreter is a hand-written Interpreter stand-in: Execute records
// the command and, if configured, synchronously emits one output event to
// every live subscriber before returning.
type fakeInterpreter struct {
	mu       sync.Mutex
	commands []string
	subs     map[int]func(string, OutputKind)
	next     int
	response func(cmd string) (text string, kind OutputKind, ok bool)
}

func newFakeInterpreter() *fakeInterpreter {
	return &fakeInterpreter{subs: make(map[int]func(string, OutputKind))}
}

func (f *fakeInterpreter) Subscribe(handler func(text string, kind OutputKind)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = handler
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *fakeInterpreter) Execute(command string) bool {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	resp := f.response
	handlers := make([]func(string, OutputKind), 0, len(f.subs))
	for _, h := range f.subs {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	if resp == nil {
		return true
	}
	text, kind, ok := resp(command)
	for _, h := range handlers {
		h(text, kind)
	}
	return ok
}

func newTestGameShell(t *testing.T, interp Interpreter, cfg Config) (*GameShell, *collector) {
	t.Helper()
	md := shell.Metadata{ID: "g", Name: "Game"}
	g, err := New(md, interp, cfg, shelllog.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Start(context.Background(), shell.StartOptions{TerminalWidth: 80, TerminalHeight: 24}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { g.Stop(context.Background()) })

	c := newCollector()
	g.SubscribeOutput(c.record)
	return g, c
}

type collector struct {
	mu     sync.Mutex
	chunks []string
}

func newCollector() *collector { return &collector{} }

func (c *collector) record(ev shell.OutputEvent) {
	c.mu.Lock()
	c.chunks = append(c.chunks, string(ev.Data))
	c.mu.Unlock()
}

func (c *collector) joined() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.chunks, "")
}

func (c *collector) waitFor(t *testing.T, contains string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(c.joined(), contains) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for output containing %q; got %q", contains, c.joined())
}

func TestGameShellRequiresNonNilInterpreter(t *testing.T) {
	md := shell.Metadata{ID: "g", Name: "Game"}
	g, err := New(md, nil, Config{}, shelllog.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = g.Start(context.Background(), shell.StartOptions{TerminalWidth: 80, TerminalHeight: 24})
	if err == nil {
		t.Fatal("expected Start to fail with a nil interpreter")
	}
}

func TestGameShellDelegatesToInterpreter(t *testing.T) {
	interp := newFakeInterpreter()
	interp.response = func(cmd string) (string, OutputKind, bool) {
		return "ok: " + cmd, Message, true
	}
	g, c := newTestGameShell(t, interp, Config{})

	if err := g.WriteInput([]byte("jump\r")); err != nil {
		t.Fatalf("WriteInput: %v", err)
	}

	c.waitFor(t, "ok: jump")

	interp.mu.Lock()
	cmds := append([]string(nil), interp.commands...)
	interp.mu.Unlock()
	if len(cmds) != 1 || cmds[0] != "jump" {
		t.Fatalf("expected interpreter to receive [\"jump\"], got %v", cmds)
	}
}

func TestGameShellErrorOutputTaggedRed(t *testing.T) {
	interp := newFakeInterpreter()
	interp.response = func(cmd string) (string, OutputKind, bool) {
		return "bad command", Error, false
	}
	g, c := newTestGameShell(t, interp, Config{})

	_ = g.WriteInput([]byte("nope\r"))
	c.waitFor(t, "bad command")

	joined := c.joined()
	if !strings.Contains(joined, "\x1b[31m") {
		t.Errorf("expected error output to carry the red-foreground escape, got %q", joined)
	}
}

func TestGameShellFailureWithoutErrorEventStillReportsFailure(t *testing.T) {
	interp := newFakeInterpreter()
	interp.response = func(cmd string) (string, OutputKind, bool) {
		return "", Message, false
	}
	g, c := newTestGameShell(t, interp, Config{})

	_ = g.WriteInput([]byte("nope\r"))
	c.waitFor(t, "command failed: nope")

	if !strings.Contains(c.joined(), "\x1b[31m") {
		t.Errorf("expected the synthesized failure line to carry the red-foreground escape, got %q", c.joined())
	}
}

func TestGameShellClearBuiltin(t *testing.T) {
	interp := newFakeInterpreter()
	g, c := newTestGameShell(t, interp, Config{})

	_ = g.WriteInput([]byte("clear\r"))
	c.waitFor(t, "\x1b[3J")

	interp.mu.Lock()
	n := len(interp.commands)
	interp.mu.Unlock()
	if n != 0 {
		t.Errorf("expected \"clear\" to bypass the interpreter entirely, got %d calls", n)
	}
}

func TestGameShellPromptDefault(t *testing.T) {
	interp := newFakeInterpreter()
	g, c := newTestGameShell(t, interp, Config{DefaultPrompt: "arena> "})
	g.SendPrompt()
	c.waitFor(t, "arena> ")
}

func TestGameShellActiveSlotOnlyRoutesToInvoker(t *testing.T) {
	interp := newFakeInterpreter()
	interp.response = func(cmd string) (string, OutputKind, bool) {
		return "reply: " + cmd, Message, true
	}

	mdA := shell.Metadata{ID: "a", Name: "A"}
	mdB := shell.Metadata{ID: "b", Name: "B"}
	a, err := New(mdA, interp, Config{}, shelllog.Discard())
	if err != nil {
		t.Fatalf("New a: %v", err)
	}
	b, err := New(mdB, interp, Config{}, shelllog.Discard())
	if err != nil {
		t.Fatalf("New b: %v", err)
	}
	opts := shell.StartOptions{TerminalWidth: 80, TerminalHeight: 24}
	if err := a.Start(context.Background(), opts); err != nil {
		t.Fatalf("Start a: %v", err)
	}
	if err := b.Start(context.Background(), opts); err != nil {
		t.Fatalf("Start b: %v", err)
	}
	defer a.Stop(context.Background())
	defer b.Stop(context.Background())

	ca, cb := newCollector(), newCollector()
	a.SubscribeOutput(ca.record)
	b.SubscribeOutput(cb.record)

	_ = a.WriteInput([]byte("ping\r"))
	ca.waitFor(t, "reply: ping")

	time.Sleep(20 * time.Millisecond)
	if strings.Contains(cb.joined(), "reply: ping") {
		t.Errorf("expected shell b to not receive shell a's interpreter output, got %q", cb.joined())
	}
}
