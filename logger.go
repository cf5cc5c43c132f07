package probelsh

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with probelsh-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithTables adds a tables field to the logger.
func (l *Logger) WithTables(tables int) *Logger {
	return &Logger{
		Logger: l.Logger.With("tables", tables),
	}
}

// LogFill logs a fill operation.
func (l *Logger) LogFill(ctx context.Context, vectors, tables int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fill failed",
			"vectors", vectors,
			"tables", tables,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "fill completed",
		"vectors", vectors,
		"tables", tables,
		"duration", duration,
	)
}

// LogProbe logs a k-probe query.
func (l *Logger) LogProbe(ctx context.Context, k int, stats ProbeStats, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "probe failed",
			"k", k,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "probe completed",
		"k", k,
		"probes", stats.Probes,
		"candidates", stats.Candidates,
		"non_empty_buckets", stats.NonEmptyBuckets,
		"stop", stats.Stop.String(),
		"results", results,
	)
}
