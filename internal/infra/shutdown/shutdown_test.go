package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestNewHandler(t *testing.T) {
	h := NewHandler(5 * time.Second)
	if h == nil {
		t.Fatal("NewHandler returned nil")
	}
	if h.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", h.timeout)
	}
	if h.hooks == nil {
		t.Error("hooks should be initialized")
	}
	if h.done == nil {
		t.Error("done channel should be initialized")
	}
	if h.logger == nil {
		t.Error("logger should be initialized")
	}
}

func TestHandler_Done(t *testing.T) {
	h := NewHandler(5 * time.Second)

	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}

func registerOrdered(h *Handler, order *[]int, mu *sync.Mutex) {
	for i := 1; i <= 3; i++ {
		i := i
		h.OnShutdown("hook", func(ctx context.Context) error {
			mu.Lock()
			*order = append(*order, i)
			mu.Unlock()
			return nil
		})
	}
}

func TestHandler_Wait_WithSignal(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var callOrder []int
	var mu sync.Mutex
	registerOrdered(h, &callOrder, &mu)

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Wait()
	}()

	// Give Wait time to set up signal handler
	time.Sleep(50 * time.Millisecond)

	syscall.Kill(syscall.Getpid(), syscall.SIGINT)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(callOrder) != 3 || callOrder[0] != 3 || callOrder[1] != 2 || callOrder[2] != 1 {
		t.Errorf("hooks called in wrong order: %v, want [3 2 1]", callOrder)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_WaitContext_Cancel(t *testing.T) {
	h := NewHandler(time.Second)

	var called bool
	h.OnShutdown("flag", func(context.Context) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.WaitContext(ctx)
	}()

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("WaitContext() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitContext() did not return after cancel")
	}
	if !called {
		t.Error("hook should run on cancellation")
	}
}

func TestHandler_Shutdown_HookError(t *testing.T) {
	h := NewHandler(5 * time.Second)
	expectedErr := errors.New("hook error")

	var ran int
	h.OnShutdown("first", func(context.Context) error {
		ran++
		return nil
	})
	h.OnShutdown("failing", func(context.Context) error {
		ran++
		return expectedErr
	})

	if err := h.Shutdown(); !errors.Is(err, expectedErr) {
		t.Errorf("Shutdown() error = %v, want %v", err, expectedErr)
	}
	if ran != 2 {
		t.Errorf("ran %d hooks, want 2 (a failure must not stop the rest)", ran)
	}
}

func TestHandler_Shutdown_Once(t *testing.T) {
	h := NewHandler(time.Second)

	var count int
	h.OnShutdown("count", func(context.Context) error {
		count++
		return nil
	})

	_ = h.Shutdown()
	_ = h.Shutdown()
	if count != 1 {
		t.Errorf("hook ran %d times, want 1", count)
	}
}

func TestHandler_Shutdown_Deadline(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)

	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	err := h.Shutdown()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("hook context should expire after the timeout")
	}
}
