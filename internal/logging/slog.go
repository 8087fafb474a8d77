package logging

import (
	"context"
	"log/slog"
)

// SlogLogger adapts a *slog.Logger to the Logger interface. The same
// secret-hygiene rule applies as for the interface: attribute values must
// describe vault state (record ids, field names, counts), never passphrases,
// keys, or decrypted field values.
type SlogLogger struct {
	base *slog.Logger
}

var _ Logger = (*SlogLogger)(nil)

// NewSlogLogger wraps base. A nil base falls back to slog.Default().
func NewSlogLogger(base *slog.Logger) *SlogLogger {
	if base == nil {
		base = slog.Default()
	}
	return &SlogLogger{base: base}
}

func (l *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.base.DebugContext(ctx, msg, args...)
}

func (l *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.base.InfoContext(ctx, msg, args...)
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.base.WarnContext(ctx, msg, args...)
}

func (l *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.base.ErrorContext(ctx, msg, args...)
}

// With returns a child logger carrying the given key-value pairs on every
// record.
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{base: l.base.With(args...)}
}
