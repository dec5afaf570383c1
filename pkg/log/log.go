// Package log provides the leveled, structured logger passed to every loader, resolver and runner
// call, and the fields that tie its lines to an asset.
package log

import "context"

var (
	std = New()
)

type contextKey byte

const loggerContextKey contextKey = iota

// Default returns the logger used when a context carries none.
// Tests should create their own logger instead.
func Default() Logger {
	return std
}

// ContextWithLogger returns a new context carrying the given logger.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext returns the logger stored in the context, or the default logger.
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerContextKey).(Logger); ok {
		return logger
	}

	return std
}
