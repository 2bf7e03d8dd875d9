package shell

import "testing"

func TestMetadataValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m := Metadata{ID: "x", Name: "X"}
		if err := m.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		m := Metadata{Name: "X"}
		if err := m.Validate(); err == nil {
			t.Error("expected error for empty id, got nil")
		}
	})

	t.Run("empty name", func(t *testing.T) {
		m := Metadata{ID: "x"}
		if err := m.Validate(); err == nil {
			t.Error("expected error for empty name, got nil")
		}
	})
}

func TestStartOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    StartOptions
		wantErr bool
	}{
		{"positive dimensions", StartOptions{TerminalWidth: 80, TerminalHeight: 24}, false},
		{"zero width", StartOptions{TerminalWidth: 0, TerminalHeight: 24}, true},
		{"negative height", StartOptions{TerminalWidth: 80, TerminalHeight: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOutputTypeString(t *testing.T) {
	if Stdout.String() != "stdout" {
		t.Errorf("expected \"stdout\", got %q", Stdout.String())
	}
	if Stderr.String() != "stderr" {
		t.Errorf("expected \"stderr\", got %q", Stderr.String())
	}
	if OutputType(99).String() != "unknown" {
		t.Errorf("expected \"unknown\", got %q", OutputType(99).String())
	}
}
