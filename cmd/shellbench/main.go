// Command shellbench is a thin terminal-bridge harness: it registers the
// reference concrete shells, then either lists what's registered or runs
// one against the real terminal. It lives outside the importable shell*
// packages; CLI entry points are an external collaborator, not core
// scope.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kir-gadjello/shellcore/shell"
	"github.com/kir-gadjello/shellcore/shell/gameshell"
	"github.com/kir-gadjello/shellcore/shell/linediscipline"
	"github.com/kir-gadjello/shellcore/shell/registry"
	"github.com/kir-gadjello/shellcore/shelllog"
)

func buildRegistry() *registry.Registry {
	reg := registry.New()

	_ = reg.Register("game", func() (shell.Shell, error) {
		metadata := shell.Metadata{
			ID:          "game",
			Name:        "Game Console",
			Description: "Reference line-discipline shell backed by a tiny demo command interpreter",
			Version:     shell.Version{Major: 1, Minor: 0, Patch: 0},
			Author:      "shellcore",
		}
		interp := newDemoInterpreter()
		cfg := gameshell.Config{DefaultPrompt: "game> "}
		if home, err := os.UserHomeDir(); err == nil {
			cfg.ConfigPath = home + "/.shellcore/gameshell.yaml"
		}
		return gameshell.New(metadata, interp, cfg, shelllog.Default())
	})

	_ = reg.Register("raw-line", func() (shell.Shell, error) {
		metadata := shell.Metadata{
			ID:          "raw-line",
			Name:        "Raw Line Discipline",
			Description: "Line-discipline shell with no concrete command executor beyond echoing input",
			Version:     shell.Version{Major: 1, Minor: 0, Patch: 0},
			Author:      "shellcore",
		}
		return linediscipline.New(metadata, echoExecutor{}, linediscipline.DefaultOptions(), shelllog.Default())
	})

	return reg
}

// echoExecutor is the minimal CommandExecutor for the "raw-line" demo
// registration: it just echoes the trimmed line back as output.
type echoExecutor struct{}

func (echoExecutor) ExecuteCommandLine(sh *linediscipline.Shell, line string) error {
	sh.EnqueueOutputString(line+"\r\n", shell.Stdout)
	sh.SendPrompt()
	return nil
}

func main() {
	reg := buildRegistry()

	rootCmd := &cobra.Command{
		Use:   "shellbench",
		Short: "Terminal-bridge harness for the embeddable shell framework",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered shells",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, r := range reg.List() {
				fmt.Printf("%-12s %s: %s\n", r.ID, r.Metadata.Name, r.Metadata.Description)
			}
			return nil
		},
	}

	var width, height int
	runCmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Run a registered shell against the real terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("shellbench: run requires a real terminal on stdout")
			}
			id := args[0]
			if !reg.IsRegistered(id) {
				return fmt.Errorf("shellbench: no shell registered under id %q", id)
			}
			sh, err := reg.Create(id)
			if err != nil {
				return err
			}
			if width <= 0 || height <= 0 {
				if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
					width, height = w, h
				} else {
					width, height = 80, 24
				}
			}
			startOpts := shell.StartOptions{TerminalWidth: width, TerminalHeight: height}
			return runBridge(context.Background(), sh, startOpts)
		},
	}
	runCmd.Flags().IntVar(&width, "width", 0, "terminal width (default: 80, or autodetected when a TTY)")
	runCmd.Flags().IntVar(&height, "height", 0, "terminal height (default: 24, or autodetected when a TTY)")

	rootCmd.AddCommand(listCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
