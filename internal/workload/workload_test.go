package workload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want %+v", cfg, Default())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workload.yaml")
	data := []byte("rounds: 3\nentities: 200\nchurn: 0.5\nprofile: cpu\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Rounds != 3 || cfg.Entities != 200 || cfg.Profile != ProfileCPU {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Iterations != Default().Iterations {
		t.Errorf("missing keys must keep defaults, Iterations = %d", cfg.Iterations)
	}
	if got := cfg.ChurnCount(); got != 100 {
		t.Errorf("ChurnCount = %d, want 100", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Syntax", "rounds: [1"},
		{"Rounds", "rounds: 0"},
		{"Iterations", "iterations: -1"},
		{"Entities", "entities: 0"},
		{"Churn", "churn: 1.5"},
		{"Profile", "profile: block"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("expected %q to be rejected", tt.data)
			}
		})
	}
}

func TestProfileOptions(t *testing.T) {
	for _, mode := range []string{ProfileCPU, ProfileMem, ProfileAllocs} {
		cfg := Default()
		cfg.Profile = mode
		if got := len(cfg.ProfileOptions()); got != 3 {
			t.Errorf("%s: expected 3 options, got %d", mode, got)
		}
	}
}
