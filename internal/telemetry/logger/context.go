package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	loggerKey   contextKey = "dynbind.logger"
	threadIDKey contextKey = "dynbind.thread_id"
	traceIDKey  contextKey = "dynbind.trace_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithThreadID adds a binding-thread ID to the context.
func WithThreadID(ctx context.Context, threadID string) context.Context {
	return context.WithValue(ctx, threadIDKey, threadID)
}

// ThreadIDFromContext extracts the thread ID from context.
func ThreadIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(threadIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext extracts the trace ID from context.
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger
// with the thread ID and trace ID from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if id := ThreadIDFromContext(ctx); id != "" {
		l = l.With("thread_id", id)
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		l = l.With("trace_id", traceID)
	}

	return l
}
