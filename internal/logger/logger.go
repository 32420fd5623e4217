// Package logger sets up structured logging for the pipeline commands.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// New creates a slog logger writing text output to w at the given level.
// Unknown levels fall back to info; verbose forces debug.
func New(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl := slog.LevelInfo

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	if verbose {
		lvl = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})

	return slog.New(handler)
}
