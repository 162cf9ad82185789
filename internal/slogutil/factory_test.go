package slogutil

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"expertfinder/internal/config"
	"expertfinder/internal/paths"
)

func TestLoggerFactory_Level(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "error"

	f := NewLoggerFactory("", cfg)
	if f.Level() != slog.LevelError {
		t.Errorf("Level() = %v, want error from config", f.Level())
	}

	f.WithLevel(slog.LevelDebug)
	if f.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug from CLI override", f.Level())
	}
}

func TestLoggerFactory_WatchLoggerWritesFile(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "info"

	f := NewLoggerFactory(root, cfg)
	var console bytes.Buffer
	logger := f.WatchLogger(&console)
	logger.Info("Focus changed", "file", "a.go")
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !strings.Contains(console.String(), "Focus changed") {
		t.Errorf("console output missing record: %q", console.String())
	}
	data, err := os.ReadFile(paths.GetWatchLogPath(root))
	if err != nil {
		t.Fatalf("watch log missing: %v", err)
	}
	if !strings.Contains(string(data), "file=a.go") {
		t.Errorf("watch log content = %q", data)
	}
}

func TestLoggerFactory_WatchLoggerWithoutRepo(t *testing.T) {
	f := NewLoggerFactory("", nil).WithLevel(slog.LevelInfo)
	var console bytes.Buffer
	f.WatchLogger(&console).Info("console only")

	if !strings.Contains(console.String(), "console only") {
		t.Errorf("console output missing record: %q", console.String())
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close with no files failed: %v", err)
	}
}
