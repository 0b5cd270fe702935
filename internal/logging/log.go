// Package logging builds the application loggers.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a structured logger writing to w at the given level.
// Supported levels: "debug", "info", "warn", "error" (default "info").
// Format "json" selects the JSON handler; anything else selects text.
func New(w io.Writer, level, format string) *slog.Logger {
	var slevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slevel = slog.LevelDebug
	case "info":
		slevel = slog.LevelInfo
	case "warn":
		slevel = slog.LevelWarn
	case "error":
		slevel = slog.LevelError
	default:
		slevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: slevel}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewRotatingFile creates a logger writing to a size-rotated file. TUI
// binaries use this because the terminal belongs to the renderer. The
// returned closer flushes the rotation sink.
func NewRotatingFile(path, level, format string) (*slog.Logger, io.Closer) {
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	return New(sink, level, format), sink
}
