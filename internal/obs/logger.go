// Package obs holds the logging and metrics plumbing shared by the server,
// the worker pool and the CLI. Loggers are always passed in explicitly.
package obs

import (
	"io"
	"log/slog"
	"strings"
)

// levelSilent sits above every standard level so nothing is emitted.
const levelSilent = slog.Level(100)

// Format selects the log line layout.
type Format string

const (
	// TextFormat renders `TIMESTAMP [level] message | key=value`.
	TextFormat Format = "text"
	// JSONFormat renders one JSON object per line.
	JSONFormat Format = "json"
)

// NewLogger builds a logger writing to w at the given level.
// Unknown formats fall back to TextFormat.
func NewLogger(w io.Writer, level slog.Level, format Format) *slog.Logger {
	if Format(strings.ToLower(string(format))) == JSONFormat {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(NewLineHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewLineHandler(io.Discard, &slog.HandlerOptions{Level: levelSilent}))
}

// LevelFromString maps debug, info, warn and error (any case) to a slog level;
// off, silent and none disable logging. Anything else is treated as info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off", "silent", "none":
		return levelSilent
	default:
		return slog.LevelInfo
	}
}

// OrDiscard returns l, or a discard logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return NewDiscardLogger()
	}
	return l
}
