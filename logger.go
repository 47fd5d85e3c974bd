package hashvec

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with hashvec-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithPath adds a path field (file path or blob name).
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithShape adds the vector shape: slot count, key bits and value width.
func (l *Logger) WithShape(n uint64, keyBits, width uint8) *Logger {
	return &Logger{
		Logger: l.Logger.With("n", n, "key_bits", keyBits, "value_bits", width),
	}
}

// LogBuild logs a completed Build.
func (l *Logger) LogBuild(ctx context.Context, n uint64, duration time.Duration) {
	l.DebugContext(ctx, "build completed",
		"n", n,
		"duration", duration,
	)
}

// LogSave logs a save operation.
func (l *Logger) LogSave(ctx context.Context, bytes int64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"bytes", bytes,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "save completed",
		"bytes", bytes,
		"duration", duration,
	)
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, bytes int64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"bytes", bytes,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "load completed",
		"bytes", bytes,
		"duration", duration,
	)
}
