// Package logging provides leveled logging and generation tracing for simfactory.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A GenerationLog for structured JSONL traces of every emitted artifact
//     (<output dir>/generation.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug. At this level full
// serialized fragments are logged as they are produced.
const LevelTrace = slog.LevelDebug - 4

// GenerationLogFile is the name of the JSONL trace written in an output directory.
const GenerationLogFile = "generation.jsonl"

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GenerationLog appends one JSON line per generation step. It is safe for
// concurrent use. A nil GenerationLog is valid; all methods are no-ops.
type GenerationLog struct {
	mu   sync.Mutex
	file *os.File
}

// NewGenerationLog opens dir/generation.jsonl for append.
// At "info" level (the default) it returns nil and no file is created.
// Returns nil if the directory or file cannot be opened.
func NewGenerationLog(dir string, level string) *GenerationLog {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, GenerationLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}

	return &GenerationLog{file: f}
}

// Log writes a step with its fields as a single JSONL line. "step" and
// "time" keys are added; the caller's map is not mutated.
func (g *GenerationLog) Log(step string, fields map[string]any) {
	if g == nil || g.file == nil {
		return
	}

	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["step"] = step
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = g.file.Write(data)
}

// Close closes the underlying file.
func (g *GenerationLog) Close() {
	if g == nil || g.file == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.file.Close()
	g.file = nil
}
