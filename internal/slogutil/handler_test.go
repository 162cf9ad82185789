package slogutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "human", slog.LevelInfo)

	logger.Info("Published attribution", "file", "main.go", "authors", 2)

	output := buf.String()
	for _, want := range []string{" INF Published attribution ", "file=main.go", "authors=2"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestLineHandler_Levels(t *testing.T) {
	tests := []struct {
		logFunc  func(*slog.Logger)
		expected string
	}{
		{func(l *slog.Logger) { l.Debug("debug") }, "DBG"},
		{func(l *slog.Logger) { l.Info("info") }, "INF"},
		{func(l *slog.Logger) { l.Warn("warn") }, "WRN"},
		{func(l *slog.Logger) { l.Error("error") }, "ERR"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(NewLogger(&buf, "human", slog.LevelDebug))
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestLineHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "human", slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("messages below warn should be filtered, got: %s", output)
	}
	if !strings.Contains(output, "warn message") {
		t.Error("warn message should be included")
	}
}

func TestLineHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "human", slog.LevelInfo).
		With("component", "session").
		WithGroup("request")

	logger.Info("Scoring", "seq", 3)

	output := buf.String()
	if !strings.Contains(output, "component=session") {
		t.Errorf("expected pre-set attr, got: %s", output)
	}
	if !strings.Contains(output, "request.seq=3") {
		t.Errorf("expected grouped key, got: %s", output)
	}
}

func TestLineHandler_Quoting(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "human", slog.LevelInfo)

	logger.Info("Attribution failed",
		"error", errors.New("exit status 128"),
		"empty", "",
		"path", "a=b.go",
		"plain", "main.go")

	output := buf.String()
	for _, want := range []string{
		`error="exit status 128"`,
		`empty=""`,
		`path="a=b.go"`,
		` plain=main.go`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestLineHandler_TimeAndGroupAttr(t *testing.T) {
	var buf bytes.Buffer
	h := NewLineHandler(&buf, nil)

	r := slog.NewRecord(time.Date(2026, 3, 1, 14, 3, 7, 412_000_000, time.Local), slog.LevelWarn, "Timed out", 0)
	r.AddAttrs(slog.Group("oracle", slog.String("strategy", "doa"), slog.Duration("timeout", 5*time.Second)))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatal(err)
	}

	want := "14:03:07.412 WRN Timed out oracle.strategy=doa oracle.timeout=5s\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	untimed := slog.NewRecord(time.Time{}, slog.LevelInfo, "no clock", 0)
	if err := h.Handle(context.Background(), untimed); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "INF no clock\n" {
		t.Errorf("zero time should be omitted, got %q", buf.String())
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "json", slog.LevelInfo).Info("hello", "k", "v")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"silent", Silent},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LevelFromString(tt.input); got != tt.expected {
				t.Errorf("LevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		quiet     bool
		expected  slog.Level
	}{
		{0, false, slog.LevelWarn},
		{1, false, slog.LevelInfo},
		{2, false, slog.LevelDebug},
		{0, true, Silent},
		{5, true, Silent},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.quiet); got != tt.expected {
			t.Errorf("LevelFromVerbosity(%d, %v) = %v, want %v", tt.verbosity, tt.quiet, got, tt.expected)
		}
	}
}

func TestOrDiscard(t *testing.T) {
	logger := OrDiscard(nil)
	if logger == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	logger.Error("dropped")

	existing := NewDiscardLogger()
	if OrDiscard(existing) != existing {
		t.Error("OrDiscard should return a non-nil logger unchanged")
	}
}

func TestTeeHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := NewLineHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := NewLineHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(NewTeeHandler(h1, h2))
	logger.Info("info message")
	logger.Warn("warn message")

	if !strings.Contains(buf1.String(), "info message") || !strings.Contains(buf1.String(), "warn message") {
		t.Errorf("buf1 should contain both messages, got: %s", buf1.String())
	}
	if strings.Contains(buf2.String(), "info message") {
		t.Error("buf2 should not contain info message")
	}
	if !strings.Contains(buf2.String(), "warn message") {
		t.Error("buf2 should contain warn message")
	}
}
