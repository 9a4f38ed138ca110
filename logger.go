package trainpack

import (
	"log/slog"
	"os"
)

// Logger carries the pipeline's structured logging. It embeds slog.Logger,
// so callers can attach fields with With before handing it to Pack and the
// pipeline's progress lines inherit them.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps an slog handler. A nil handler falls back to text output
// on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		return NewTextLogger(slog.LevelInfo)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger logs human-readable lines to stderr at the given minimum
// level.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger logs one JSON record per line to stderr, for runs whose
// output is collected by a log shipper.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards all output. WithLogger(nil) resolves to it.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}
