package regionfill

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with regionfill-specific context.
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
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithRunID tags every record with the run identifier.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithComponent tags records with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogPhase logs the outcome of one run phase.
func (l *Logger) LogPhase(ctx context.Context, name string, took time.Duration, passed bool, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "phase failed",
			"phase", name,
			"duration", took,
			"error", err,
		)
	case !passed:
		l.WarnContext(ctx, "phase did not pass",
			"phase", name,
			"duration", took,
		)
	default:
		l.InfoContext(ctx, "phase completed",
			"phase", name,
			"duration", took,
		)
	}
}

// LogArchive logs an archive upload.
func (l *Logger) LogArchive(ctx context.Context, name string, raw, stored int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "archive failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "archive stored",
			"name", name,
			"raw_bytes", raw,
			"stored_bytes", stored,
		)
	}
}

// LogCleanup logs removal of the backing file.
func (l *Logger) LogCleanup(ctx context.Context, path string, err error) {
	if err != nil {
		l.WarnContext(ctx, "cleanup failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "backing file removed",
			"path", path,
		)
	}
}
