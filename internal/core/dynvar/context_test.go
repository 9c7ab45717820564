package dynvar

import (
	"context"
	"testing"

	"github.com/yndnr/dynbind-go/internal/telemetry/logger"
)

func TestThreadContext(t *testing.T) {
	rt := NewRuntime()
	th := rt.NewThread()

	ctx := WithThread(context.Background(), th)

	if got := ThreadFromContext(ctx); got != th {
		t.Error("ThreadFromContext() should return the attached thread")
	}
	if got := logger.ThreadIDFromContext(ctx); got != string(th.ID()) {
		t.Errorf("ThreadIDFromContext() = %q, want %q", got, th.ID())
	}
	if ThreadFromContext(context.Background()) != nil {
		t.Error("ThreadFromContext() on empty context should be nil")
	}
}
