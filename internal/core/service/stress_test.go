package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/dynbind-go/internal/core/domain"
	"github.com/yndnr/dynbind-go/internal/core/dynvar"
)

func TestStressConfig_Validate(t *testing.T) {
	valid := StressConfig{Workers: 2, Iterations: 10, Vars: 3, Depth: 2}

	tests := []struct {
		name    string
		modify  func(*StressConfig)
		wantErr bool
	}{
		{"valid", func(*StressConfig) {}, false},
		{"no workers", func(c *StressConfig) { c.Workers = 0 }, true},
		{"no iterations", func(c *StressConfig) { c.Iterations = 0 }, true},
		{"no vars", func(c *StressConfig) { c.Vars = 0 }, true},
		{"no depth", func(c *StressConfig) { c.Depth = 0 }, true},
		{"negative rate", func(c *StressConfig) { c.Rate = -1 }, true},
		{"rate without burst", func(c *StressConfig) { c.Rate = 5 }, true},
		{"rate with burst", func(c *StressConfig) { c.Rate = 5; c.Burst = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("Validate() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestStressService_Run(t *testing.T) {
	rt := dynvar.NewRuntime()
	svc := NewStressService(rt, nil)
	cfg := StressConfig{Workers: 8, Iterations: 200, Vars: 4, Depth: 3}

	var ticks atomic.Int64
	res, err := svc.Run(context.Background(), cfg, func() { ticks.Add(1) })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Requested != 1600 || res.Completed != 1600 {
		t.Errorf("Requested/Completed = %d/%d, want 1600/1600", res.Requested, res.Completed)
	}
	if res.CounterRoot != res.Completed {
		t.Errorf("CounterRoot = %d, want %d", res.CounterRoot, res.Completed)
	}
	if res.Leaked != 0 {
		t.Errorf("Leaked = %d, want 0", res.Leaked)
	}
	if !res.Consistent {
		t.Errorf("run should be consistent: %+v", res)
	}
	if res.Interrupted {
		t.Error("run should not be interrupted")
	}
	if ticks.Load() != res.Completed {
		t.Errorf("progress called %d times, want %d", ticks.Load(), res.Completed)
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}

	if rt.ThreadCount() != 0 {
		t.Errorf("ThreadCount() = %d, want 0 after run", rt.ThreadCount())
	}
	if got := rt.Namespaces(); len(got) != 0 {
		t.Errorf("Namespaces() = %v, want stress namespace removed", got)
	}
}

func TestStressService_RunInvalid(t *testing.T) {
	svc := NewStressService(dynvar.NewRuntime(), nil)

	if _, err := svc.Run(context.Background(), StressConfig{}, nil); err == nil {
		t.Error("Run() should reject an empty config")
	}
}

func TestStressService_RunCanceled(t *testing.T) {
	svc := NewStressService(dynvar.NewRuntime(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Run(ctx, StressConfig{Workers: 2, Iterations: 1000, Vars: 1, Depth: 1}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Interrupted {
		t.Error("Interrupted should be true")
	}
	if res.Completed != 0 {
		t.Errorf("Completed = %d, want 0", res.Completed)
	}
	if !res.Consistent {
		t.Errorf("an interrupted run should still be consistent: %+v", res)
	}
}

func TestStressService_RunRateLimited(t *testing.T) {
	svc := NewStressService(dynvar.NewRuntime(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	cfg := StressConfig{Workers: 2, Iterations: 1000, Vars: 1, Depth: 1, Rate: 20, Burst: 1}
	res, err := svc.Run(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Interrupted {
		t.Error("a rate limited run should hit the deadline")
	}
	if res.Completed == 0 || res.Completed > 20 {
		t.Errorf("Completed = %d, want a handful under the limit", res.Completed)
	}
	if res.CounterRoot != res.Completed {
		t.Errorf("CounterRoot = %d, want %d", res.CounterRoot, res.Completed)
	}
	if !res.Consistent {
		t.Errorf("an interrupted run should still be consistent: %+v", res)
	}
}

func TestStressService_RunLimiterStopsBeforeDeadline(t *testing.T) {
	svc := NewStressService(dynvar.NewRuntime(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// One token up front; the next one is due after the deadline.
	cfg := StressConfig{Workers: 2, Iterations: 100, Vars: 1, Depth: 1, Rate: 1, Burst: 1}
	res, err := svc.Run(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("workers should stop before the deadline passes")
	}
	if !res.Interrupted {
		t.Errorf("Interrupted = false, want true: %+v", res)
	}
	if res.Completed != 1 {
		t.Errorf("Completed = %d, want 1", res.Completed)
	}
	if res.Completed == res.Requested {
		t.Errorf("Completed = Requested = %d, want a short run", res.Completed)
	}
}
