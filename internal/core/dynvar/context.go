package dynvar

import (
	"context"

	"github.com/yndnr/dynbind-go/internal/telemetry/logger"
)

type contextKey string

const threadKey contextKey = "dynbind.thread"

// WithThread returns a context carrying th. The thread ID is also attached
// for logging.
func WithThread(ctx context.Context, th *Thread) context.Context {
	ctx = context.WithValue(ctx, threadKey, th)
	return logger.WithThreadID(ctx, string(th.ID()))
}

// ThreadFromContext returns the thread carried by ctx, or nil.
func ThreadFromContext(ctx context.Context) *Thread {
	if th, ok := ctx.Value(threadKey).(*Thread); ok {
		return th
	}
	return nil
}
