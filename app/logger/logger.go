package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a text logger. debug forces the debug level, otherwise LOG_LEVEL decides.
func New(debug bool) *slog.Logger {
	return newWithWriter(os.Stdout, debug, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, debug bool) *slog.Logger {
	return newWithWriter(w, debug, os.Getenv("LOG_LEVEL"))
}

func newWithWriter(w io.Writer, debug bool, rawLevel string) *slog.Logger {
	level := parseLevel(rawLevel)
	if debug {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", "gov-comb")
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
