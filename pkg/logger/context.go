package logger

import "context"

type contextKey struct{}

// IntoContext stores a request scoped logger.
func IntoContext(ctx context.Context, log Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the logger stored by IntoContext, or fallback.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if log, ok := ctx.Value(contextKey{}).(Logger); ok && log != nil {
		return log
	}
	if fallback == nil {
		return Nop()
	}
	return fallback
}
