// Package logger wraps log/slog for the engines and the CLI.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Interface defines logging methods used by the engines
type Interface interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Logger implements the logging interface
type Logger struct {
	logger *slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	return NewWithLevel(slog.LevelInfo)
}

// NewWithLevel creates a new logger with specified level
func NewWithLevel(level slog.Level) *Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a text logger writing to w.
func NewWithWriter(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		logger: slog.New(handler),
	}
}

// FromSlog wraps an existing slog logger.
func FromSlog(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l}
}

// Default wraps slog.Default(). Engines use it when no logger is configured.
func Default() *Logger {
	return FromSlog(slog.Default())
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard, slog.LevelError)
}

// ParseLevel converts debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level %q", s)
	}
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// GetSlogLogger returns the underlying slog logger
func (l *Logger) GetSlogLogger() *slog.Logger {
	return l.logger
}

// Error creates a structured error field
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// Stack creates a structured stack field
func Stack(stack string) slog.Attr {
	return slog.String("stack", stack)
}
