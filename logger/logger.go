// Package logger is a thin structured-logging facade over log/slog. The
// engine and server take a Logger so library consumers can plug in their own
// handler or silence logging entirely with Noop.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the interface for structured logging with key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// New wraps an slog handler. A nil handler falls back to slog's default.
func New(handler slog.Handler) Logger {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &slogLogger{logger: slog.New(handler)}
}

// NewJSON returns a JSON logger writing to w at the given level.
func NewJSON(w io.Writer, level slog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewText returns a text logger writing to w at the given level.
func NewText(w io.Writer, level slog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return noopLogger{}
}
