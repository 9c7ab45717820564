package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/dynbind-go/internal/core/domain"
	"github.com/yndnr/dynbind-go/internal/core/dynvar"
	"github.com/yndnr/dynbind-go/internal/telemetry/logger"
)

// StressConfig shapes a stress run.
type StressConfig struct {
	// Workers is the number of concurrent threads.
	Workers int
	// Iterations per worker.
	Iterations int
	// Vars bound in every frame.
	Vars int
	// Depth is the number of frames pushed per iteration.
	Depth int
	// Rate limits iterations per second across all workers. 0 disables.
	Rate float64
	// Burst is the limiter bucket size.
	Burst int
}

// Validate checks the configuration.
func (c StressConfig) Validate() error {
	switch {
	case c.Workers < 1:
		return domain.ErrInvalidArgument.WithDetails("workers must be at least 1")
	case c.Iterations < 1:
		return domain.ErrInvalidArgument.WithDetails("iterations must be at least 1")
	case c.Vars < 1:
		return domain.ErrInvalidArgument.WithDetails("vars must be at least 1")
	case c.Depth < 1:
		return domain.ErrInvalidArgument.WithDetails("depth must be at least 1")
	case c.Rate < 0:
		return domain.ErrInvalidArgument.WithDetails("rate must not be negative")
	case c.Rate > 0 && c.Burst < 1:
		return domain.ErrInvalidArgument.WithDetails("burst must be at least 1 when rate is set")
	}
	return nil
}

// StressResult summarises a stress run.
type StressResult struct {
	RunID       string  `json:"run_id" yaml:"run_id" table:"RUN"`
	Workers     int     `json:"workers" yaml:"workers" table:"WORKERS"`
	Requested   int64   `json:"requested" yaml:"requested" table:"REQUESTED"`
	Completed   int64   `json:"completed" yaml:"completed" table:"COMPLETED"`
	Failures    int64   `json:"failures" yaml:"failures" table:"FAILURES"`
	CounterRoot int64   `json:"counter_root" yaml:"counter_root" table:"COUNTER,wide"`
	Leaked      int64   `json:"leaked_bindings" yaml:"leaked_bindings" table:"LEAKED,wide"`
	Elapsed     string  `json:"elapsed" yaml:"elapsed" table:"ELAPSED"`
	OpsPerSec   float64 `json:"ops_per_sec" yaml:"ops_per_sec" table:"OPS/S"`
	Interrupted bool    `json:"interrupted" yaml:"interrupted" table:"INTERRUPTED,wide"`
	Consistent  bool    `json:"consistent" yaml:"consistent" table:"CONSISTENT"`
	FirstError  string  `json:"first_error,omitempty" yaml:"first_error,omitempty" table:"ERROR,wide"`
}

// StressService drives concurrent binding load through a runtime.
type StressService struct {
	rt     *dynvar.Runtime
	logger logger.Logger
}

// NewStressService creates a StressService. A nil logger uses the default.
func NewStressService(rt *dynvar.Runtime, log logger.Logger) *StressService {
	if log == nil {
		log = logger.Default()
	}
	return &StressService{rt: rt, logger: log}
}

// stamp is the value bound at one frame level, unique per worker and
// iteration so a leaked or crossed binding is detectable.
type stamp struct {
	worker, iter, level, slot int
}

// Run executes the workload. Every iteration pushes cfg.Depth frames binding
// cfg.Vars vars, checks and sets them, pops back to the base frame and
// increments a shared root counter. progress, if non-nil, is called once
// per completed iteration from the worker goroutines.
//
// Cancelling ctx, or a deadline the limiter cannot meet, stops the workers
// early; the result is still returned with Interrupted set.
func (s *StressService) Run(ctx context.Context, cfg StressConfig, progress func()) (*StressResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := ulid.Make().String()
	ns := "stress." + runID
	defer s.rt.RemoveNamespace(ns)

	counter, err := s.rt.InternRoot(ns, "counter", int64(0), true)
	if err != nil {
		return nil, err
	}
	vars := make([]*dynvar.Var, cfg.Vars)
	for i := range vars {
		if vars[i], err = s.rt.InternRoot(ns, fmt.Sprintf("v%d", i), i, true); err != nil {
			return nil, err
		}
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)
	}

	s.logger.Info("stress run started",
		"run_id", runID,
		"workers", cfg.Workers,
		"iterations", cfg.Iterations,
		"vars", cfg.Vars,
		"depth", cfg.Depth,
		"rate", cfg.Rate,
	)

	var (
		completed atomic.Int64
		failures  atomic.Int64
		stopped   atomic.Bool
		firstErr  error
		errOnce   sync.Once
		wg        sync.WaitGroup
	)
	ctx = logger.WithLogger(ctx, s.logger)
	start := time.Now()

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			th := s.rt.NewThread()
			defer s.rt.Detach(th)
			ctx := dynvar.WithThread(ctx, th)

			for i := 0; i < cfg.Iterations; i++ {
				if err := wait(ctx, limiter); err != nil {
					stopped.Store(true)
					logger.L(ctx).Debug("stress worker stopped", "worker", worker, "iteration", i, "error", err)
					return
				}

				if err := s.iterate(th, counter, vars, cfg.Depth, worker, i); err != nil {
					failures.Add(1)
					errOnce.Do(func() { firstErr = err })
					logger.L(ctx).Warn("stress iteration failed", "worker", worker, "iteration", i, "error", err)
					return
				}
				completed.Add(1)
				if progress != nil {
					progress()
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	res := &StressResult{
		RunID:       runID,
		Workers:     cfg.Workers,
		Requested:   int64(cfg.Workers) * int64(cfg.Iterations),
		Completed:   completed.Load(),
		Failures:    failures.Load(),
		Elapsed:     elapsed.Round(time.Millisecond).String(),
		Interrupted: stopped.Load() || ctx.Err() != nil,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		res.OpsPerSec = float64(res.Completed) / secs
	}
	if root, err := counter.GetRoot(); err == nil {
		res.CounterRoot, _ = root.(int64)
	}
	for _, v := range vars {
		res.Leaked += v.BindCount()
	}
	if firstErr != nil {
		res.FirstError = firstErr.Error()
	}
	res.Consistent = res.Failures == 0 && res.Leaked == 0 && res.CounterRoot == res.Completed &&
		(res.Interrupted || res.Completed == res.Requested)

	s.logger.Info("stress run finished",
		"run_id", runID,
		"completed", res.Completed,
		"elapsed", res.Elapsed,
		"consistent", res.Consistent,
		"interrupted", res.Interrupted,
	)
	return res, nil
}

// wait blocks until the next iteration may start. A limiter fails fast when
// its next token would arrive after ctx's deadline.
func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter != nil {
		return limiter.Wait(ctx)
	}
	return ctx.Err()
}

// iterate runs one push/check/set/pop cycle. The counter is only altered
// once the thread is back on its base frame so a failed iteration leaves
// it untouched.
func (s *StressService) iterate(th *dynvar.Thread, counter *dynvar.Var, vars []*dynvar.Var, depth, worker, iter int) (err error) {
	pushed := 0
	defer func() {
		for ; pushed > 0; pushed-- {
			if perr := th.Pop(); perr != nil && err == nil {
				err = perr
			}
		}
	}()

	for level := 0; level < depth; level++ {
		frame := make(map[*dynvar.Var]any, len(vars))
		for slot, v := range vars {
			frame[v] = stamp{worker, iter, level, slot}
		}
		if err := th.Push(frame); err != nil {
			return err
		}
		pushed++
	}

	top := depth - 1
	for slot, v := range vars {
		if err := expect(th, v, stamp{worker, iter, top, slot}); err != nil {
			return err
		}
		next := stamp{worker, iter, depth, slot}
		if _, err := v.Set(th, next); err != nil {
			return err
		}
		if err := expect(th, v, next); err != nil {
			return err
		}
	}

	for ; pushed > 0; pushed-- {
		if err := th.Pop(); err != nil {
			return err
		}
	}
	for slot, v := range vars {
		if err := expect(th, v, slot); err != nil {
			return err
		}
	}

	_, err = counter.AlterRoot(func(old any, _ ...any) (any, error) {
		return old.(int64) + 1, nil
	})
	return err
}

func expect(th *dynvar.Thread, v *dynvar.Var, want any) error {
	got, err := v.Get(th)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s on thread %s: got %v, want %v", v, th.ID(), got, want)
	}
	return nil
}
