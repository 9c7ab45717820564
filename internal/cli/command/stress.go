package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/dynbind-go/internal/cli/output"
	"github.com/yndnr/dynbind-go/internal/config"
	"github.com/yndnr/dynbind-go/internal/core/dynvar"
	"github.com/yndnr/dynbind-go/internal/core/service"
	"github.com/yndnr/dynbind-go/internal/infra/shutdown"
	"github.com/yndnr/dynbind-go/internal/telemetry/logger"
	"github.com/yndnr/dynbind-go/internal/telemetry/metric"
)

const shutdownTimeout = 10 * time.Second

// StressCommand returns the stress command.
func StressCommand() *cli.Command {
	return &cli.Command{
		Name:  "stress",
		Usage: "Drive concurrent push/set/pop and root mutation load",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"n"},
				Usage:   "Concurrent threads (default from config)",
			},
			&cli.IntFlag{
				Name:    "iterations",
				Aliases: []string{"i"},
				Usage:   "Iterations per worker (default from config)",
			},
			&cli.IntFlag{
				Name:  "vars",
				Usage: "Vars bound in each frame (default from config)",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Frames pushed per iteration (default from config)",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "Iterations per second across all workers, 0 for unlimited",
			},
			&cli.IntFlag{
				Name:  "burst",
				Usage: "Rate limiter burst size",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Stop the run after this long (0 for no limit)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address during the run",
			},
			&cli.BoolFlag{
				Name:  "serve",
				Usage: "Keep serving metrics after the run until interrupted",
			},
		},
		Action: runStress,
	}
}

// stressConfig merges explicitly set flags over the configured defaults.
func stressConfig(c *cli.Context, base config.StressSection) service.StressConfig {
	sc := service.StressConfig{
		Workers:    base.Workers,
		Iterations: base.Iterations,
		Vars:       base.Vars,
		Depth:      base.Depth,
		Rate:       base.Rate,
		Burst:      base.Burst,
	}
	if c.IsSet("workers") {
		sc.Workers = c.Int("workers")
	}
	if c.IsSet("iterations") {
		sc.Iterations = c.Int("iterations")
	}
	if c.IsSet("vars") {
		sc.Vars = c.Int("vars")
	}
	if c.IsSet("depth") {
		sc.Depth = c.Int("depth")
	}
	if c.IsSet("rate") {
		sc.Rate = c.Float64("rate")
	}
	if c.IsSet("burst") {
		sc.Burst = c.Int("burst")
	}
	return sc
}

func runStress(c *cli.Context) error {
	cfg := GetConfig(c)
	log := GetLogger(c)
	flags := ParseGlobalFlags(c)

	sc := stressConfig(c, cfg.Stress)
	if err := sc.Validate(); err != nil {
		return err
	}

	reg := metric.NewRegistry()
	rt := newRuntime(c, dynvar.WithObserver(reg))
	if err := reg.Register(metric.NewCollector(rt)); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	if d := c.Duration("timeout"); d > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, d)
		defer stop()
	}

	// Hooks run in reverse: the metrics server stops before the workers are
	// cancelled.
	handler := shutdown.NewHandler(shutdownTimeout).WithLogger(log)
	handler.OnShutdown("workers", func(context.Context) error {
		cancel()
		return nil
	})

	addr := cfg.Metrics.Addr
	if c.IsSet("metrics-addr") {
		addr = c.String("metrics-addr")
	}
	if addr != "" {
		srv, err := serveMetrics(addr, cfg.Metrics.Path, reg, log)
		if err != nil {
			return err
		}
		handler.OnShutdown("metrics server", srv.Shutdown)
	}

	shutdownErr := make(chan error, 1)
	waitCtx, stopWait := context.WithCancel(context.Background())
	go func() { shutdownErr <- handler.WaitContext(waitCtx) }()

	var progress func()
	var bar *output.ProgressBar
	if output.Format(flags.Output) == output.FormatTable {
		bar = output.NewProgressBar(errWriter(c), "stress", int64(sc.Workers)*int64(sc.Iterations))
		progress = func() { bar.Increment(1) }
	}

	res, runErr := service.NewStressService(rt, log).Run(ctx, sc, progress)
	if bar != nil {
		bar.Finish()
	}

	if runErr == nil && addr != "" && c.Bool("serve") && ctx.Err() == nil {
		log.Info("run complete, serving metrics until interrupted", "addr", addr)
		<-handler.Done()
	}
	stopWait()
	if err := <-shutdownErr; err != nil {
		log.Error("shutdown error", "error", err)
	}

	if runErr != nil {
		return runErr
	}
	if err := render(c, res); err != nil {
		return err
	}
	if !res.Consistent {
		return cli.Exit("stress run finished in an inconsistent state", 1)
	}
	return nil
}

// serveMetrics starts an HTTP server exposing reg on path.
func serveMetrics(addr, path string, reg *metric.Registry, log logger.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(path, reg.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics server listening", "addr", ln.Addr().String(), "path", path)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()
	return srv, nil
}
