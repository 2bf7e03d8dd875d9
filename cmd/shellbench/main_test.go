package main

import "testing"

func TestBuildRegistryRegistersDemoShells(t *testing.T) {
	reg := buildRegistry()
	for _, id := range []string{"game", "raw-line"} {
		if !reg.IsRegistered(id) {
			t.Errorf("expected %q to be registered", id)
		}
	}

	sh, err := reg.Create("raw-line")
	if err != nil {
		t.Fatalf("Create(raw-line): %v", err)
	}
	if sh.Metadata().ID != "raw-line" {
		t.Errorf("expected id \"raw-line\", got %q", sh.Metadata().ID)
	}
}
