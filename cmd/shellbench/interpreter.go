package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kir-gadjello/shellcore/shell/gameshell"
)

// demoInterpreter is a tiny stand-in for the "host command processor"
// gameshell.Interpreter describes: enough commands to drive the bridge
// (help, echo, add, vars/set) without pulling in a real game engine.
type demoInterpreter struct {
	mu   sync.Mutex
	subs map[int]func(text string, kind gameshell.OutputKind)
	next int
	vars map[string]string
}

func newDemoInterpreter() *demoInterpreter {
	return &demoInterpreter{
		subs: make(map[int]func(string, gameshell.OutputKind)),
		vars: make(map[string]string),
	}
}

func (d *demoInterpreter) Subscribe(handler func(text string, kind gameshell.OutputKind)) func() {
	d.mu.Lock()
	id := d.next
	d.next++
	d.subs[id] = handler
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *demoInterpreter) emit(text string, kind gameshell.OutputKind) {
	d.mu.Lock()
	handlers := make([]func(string, gameshell.OutputKind), 0, len(d.subs))
	for _, h := range d.subs {
		handlers = append(handlers, h)
	}
	d.mu.Unlock()
	for _, h := range handlers {
		h(text, kind)
	}
}

// Execute implements gameshell.Interpreter. It understands a handful of
// built-in verbs and reports unknown commands as errors.
func (d *demoInterpreter) Execute(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "help":
		d.emit("commands: help, echo <text>, add <a> <b>, set <k> <v>, get <k>, vars", gameshell.Message)
		return true

	case "echo":
		d.emit(strings.Join(fields[1:], " "), gameshell.Message)
		return true

	case "add":
		if len(fields) != 3 {
			d.emit("usage: add <a> <b>", gameshell.Error)
			return false
		}
		a, errA := strconv.ParseFloat(fields[1], 64)
		b, errB := strconv.ParseFloat(fields[2], 64)
		if errA != nil || errB != nil {
			d.emit("add: operands must be numbers", gameshell.Error)
			return false
		}
		d.emit(fmt.Sprintf("%g", a+b), gameshell.Message)
		return true

	case "set":
		if len(fields) != 3 {
			d.emit("usage: set <key> <value>", gameshell.Error)
			return false
		}
		d.mu.Lock()
		d.vars[fields[1]] = fields[2]
		d.mu.Unlock()
		d.emit(fmt.Sprintf("%s = %s", fields[1], fields[2]), gameshell.Message)
		return true

	case "get":
		if len(fields) != 2 {
			d.emit("usage: get <key>", gameshell.Error)
			return false
		}
		d.mu.Lock()
		v, ok := d.vars[fields[1]]
		d.mu.Unlock()
		if !ok {
			d.emit(fmt.Sprintf("get: %s is not set", fields[1]), gameshell.Error)
			return false
		}
		d.emit(v, gameshell.Message)
		return true

	case "vars":
		d.mu.Lock()
		keys := make([]string, 0, len(d.vars))
		for k := range d.vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s = %s", k, d.vars[k]))
		}
		d.mu.Unlock()
		if len(lines) == 0 {
			d.emit("(no variables set)", gameshell.Message)
		} else {
			d.emit(strings.Join(lines, "\r\n"), gameshell.Message)
		}
		return true

	default:
		d.emit(fmt.Sprintf("unknown command: %s", fields[0]), gameshell.Error)
		return false
	}
}
