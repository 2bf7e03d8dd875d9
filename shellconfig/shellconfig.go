// Package shellconfig loads the small persisted configuration mapping a
// concrete shell may consult: currently just an optional prompt
// override. YAML via gopkg.in/yaml.v3; never fail the caller on a
// missing or unreadable file, fall back to defaults instead.
package shellconfig

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// GameShellConfig is the persisted mapping a game-console shell consults
// for its prompt text.
type GameShellConfig struct {
	Prompt string `yaml:"game_shell_prompt,omitempty"`
}

// PromptOr returns the configured prompt, or fallback if none was set.
func (c *GameShellConfig) PromptOr(fallback string) string {
	if c == nil || c.Prompt == "" {
		return fallback
	}
	return c.Prompt
}

// Load reads and parses path. A missing file is not an error, it
// returns a zero-value config so callers fall back to their own
// defaults. A malformed file that does exist returns an error, since
// that's a mistake worth surfacing rather than silently ignoring.
func Load(path string) (*GameShellConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GameShellConfig{}, nil
		}
		return &GameShellConfig{}, nil
	}

	var cfg GameShellConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Reload is Load under another name, for callers that want to express
// "explicit reload" distinctly from the initial load at start.
func Reload(path string) (*GameShellConfig, error) {
	return Load(path)
}
