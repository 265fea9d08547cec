package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Trace", "Trace", LevelTrace},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
	}{
		{"info filters debug", "info", false},
		{"debug passes debug", "debug", true},
		{"trace passes debug", "trace", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("spline written")
			if got := strings.Contains(buf.String(), "spline written"); got != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v (buf: %q)", got, tt.logAtDebug, buf.String())
			}
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(context.Background(), LevelTrace, "fragment")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE label, got %q", buf.String())
	}
}

func TestNewGenerationLog_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	gl := NewGenerationLog(dir, "info")
	if gl != nil {
		t.Error("expected nil GenerationLog at info level")
	}

	// nil log must be usable
	gl.Log("geometry", map[string]any{"file": "x"})
	gl.Close()

	if _, err := os.Stat(filepath.Join(dir, GenerationLogFile)); err == nil {
		t.Error("generation.jsonl should not exist at info level")
	}
}

func TestNewGenerationLog_DebugLevel(t *testing.T) {
	dir := t.TempDir()
	gl := NewGenerationLog(dir, "debug")
	defer gl.Close()

	fields := map[string]any{"file": "test_f_0.vspl", "fibers": 2}
	gl.Log("spline", fields)
	gl.Log("geometry", nil)

	if _, ok := fields["step"]; ok {
		t.Error("caller map was mutated")
	}

	data, err := os.ReadFile(filepath.Join(dir, GenerationLogFile))
	if err != nil {
		t.Fatalf("failed to read generation log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(data))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("failed to parse JSONL entry: %v", err)
	}
	if first["step"] != "spline" {
		t.Errorf("step = %v, want spline", first["step"])
	}
	if first["fibers"] != float64(2) {
		t.Errorf("fibers = %v, want 2", first["fibers"])
	}
	if _, ok := first["time"]; !ok {
		t.Error("expected time field")
	}
}
