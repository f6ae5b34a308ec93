package logging

import "testing"

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		if logger := New(level); logger == nil || logger.Logger == nil {
			t.Fatalf("expected logger for level %q", level)
		}
	}
}

func TestWithComponent(t *testing.T) {
	logger := Default().WithComponent("intake")
	if logger == nil || logger.Logger == nil {
		t.Fatal("expected component logger")
	}
}
