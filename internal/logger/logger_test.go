package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	var quiet, loud bytes.Buffer

	New(&quiet, false).Info("hidden")
	New(&loud, true).Debug("shown", "stage", "synthesis")

	if quiet.Len() != 0 {
		t.Errorf("non-verbose logger should drop info, got %q", quiet.String())
	}
	if !strings.Contains(loud.String(), "stage=synthesis") {
		t.Errorf("verbose logger should emit debug, got %q", loud.String())
	}
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := Setup(&buf, true)
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("default logger should have debug enabled")
	}
	l.Warn("dropped edge", "from", "e1")
	if !strings.Contains(buf.String(), "dropped edge") {
		t.Errorf("expected output, got %q", buf.String())
	}
}
