package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestLoadScenarioDefaultsAndOverrides(t *testing.T) {
	path := writeScenario(t, `
drop_rate = 0.02
sizes = [8, 32]
runs_per_size = 5
`)
	sc, err := loadScenario(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.DropRate != 0.02 {
		t.Fatalf("unexpected drop rate: %v", sc.DropRate)
	}
	if len(sc.Sizes) != 2 || sc.Sizes[0] != 8 {
		t.Fatalf("unexpected sizes: %+v", sc.Sizes)
	}
	if sc.RunsPerSize != 5 {
		t.Fatalf("unexpected runs: %d", sc.RunsPerSize)
	}
	// Untouched fields keep their defaults.
	if sc.FlipRate != 0.05 || sc.FragmentSize != 64 || sc.MaxRetry != 5 {
		t.Fatalf("defaults not preserved: %+v", sc)
	}
}

func TestLoadScenarioRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"drop rate above 1": `drop_rate = 1.5`,
		"empty sizes":       `sizes = []`,
		"zero size":         `sizes = [0]`,
		"zero runs":         `runs_per_size = -1`,
	}
	for name, content := range cases {
		if _, err := loadScenario(writeScenario(t, content)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestWireCost(t *testing.T) {
	// Below the fragmentation threshold a message rides in one frame.
	frags, bytes := wireCost(100, 64)
	if frags != 1 {
		t.Fatalf("expected single frame, got %d", frags)
	}
	if bytes != 3+200+4 {
		t.Fatalf("unexpected wire bytes: %d", bytes)
	}

	// Above it, fixed-size fragments plus a remainder.
	frags, _ = wireCost(150, 64)
	if frags != 3 {
		t.Fatalf("expected 3 fragments, got %d", frags)
	}
}
