package shutdown

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/dynbind-go/internal/telemetry/logger"
)

// Hook releases one resource. It should return once ctx expires.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler runs shutdown hooks once a termination signal arrives.
type Handler struct {
	timeout time.Duration
	hooks   []namedHook
	mu      sync.Mutex
	done    chan struct{}
	once    sync.Once
	logger  logger.Logger
}

// NewHandler creates a new shutdown handler. Hooks share a deadline of
// timeout.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		hooks:   make([]namedHook, 0),
		done:    make(chan struct{}),
		logger:  logger.Default(),
	}
}

// WithLogger replaces the handler's logger.
func (h *Handler) WithLogger(l logger.Logger) *Handler {
	h.logger = l
	return h
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(name string, hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: hook})
}

// Wait blocks until SIGINT or SIGTERM and then runs the hooks.
func (h *Handler) Wait() error {
	return h.WaitContext(context.Background())
}

// WaitContext blocks until SIGINT, SIGTERM or cancellation of ctx and then
// runs the hooks.
func (h *Handler) WaitContext(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	if ctx.Err() == nil {
		h.logger.Info("shutdown signal received")
	}
	return h.Shutdown()
}

// Shutdown runs the hooks now. Later calls return nil without running
// them again.
func (h *Handler) Shutdown() error {
	var errs []error
	h.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]namedHook, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i].fn(ctx); err != nil {
				h.logger.Error("shutdown hook failed",
					"hook", hooks[i].name,
					"error", err,
				)
				errs = append(errs, err)
			}
		}
		close(h.done)
	})
	return errors.Join(errs...)
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
