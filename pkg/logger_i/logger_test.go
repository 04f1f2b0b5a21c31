package logger_i

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerCarriesComponent(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	setDefault("debug", "text", &buf)

	log := NewLogger("chunker").With("sessionId", "s-1")
	log.Debug("split done", "chunks", 3)

	out := buf.String()
	for _, want := range []string{"component=chunker", "sessionId=s-1", "chunks=3", "split done"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	setDefault("error", "json", &buf)

	NewLogger("x").Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below level, got %q", buf.String())
	}
	NewLogger("x").Error("shown")
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("expected json error line, got %q", buf.String())
	}
}
