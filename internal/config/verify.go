package config

import (
	"errors"
	"fmt"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	if err := verifyRuntime(&cfg.Runtime); err != nil {
		return err
	}
	return verifyStress(&cfg.Stress)
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "console", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, console, json", cfg.Format)
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Addr != "" && !strings.HasPrefix(cfg.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}

func verifyRuntime(cfg *RuntimeSection) error {
	if !powerOfTwo(cfg.ThreadShards) {
		return fmt.Errorf("runtime.thread_shards must be a positive power of 2, got %d", cfg.ThreadShards)
	}
	if !powerOfTwo(cfg.NamespaceShards) {
		return fmt.Errorf("runtime.namespace_shards must be a positive power of 2, got %d", cfg.NamespaceShards)
	}
	return nil
}

func verifyStress(cfg *StressSection) error {
	if cfg.Workers < 1 {
		return errors.New("stress.workers must be at least 1")
	}
	if cfg.Iterations < 1 {
		return errors.New("stress.iterations must be at least 1")
	}
	if cfg.Vars < 1 {
		return errors.New("stress.vars must be at least 1")
	}
	if cfg.Depth < 1 {
		return errors.New("stress.depth must be at least 1")
	}
	if cfg.Rate < 0 {
		return errors.New("stress.rate must not be negative")
	}
	if cfg.Rate > 0 && cfg.Burst < 1 {
		return errors.New("stress.burst must be at least 1 when stress.rate is set")
	}
	return nil
}

func powerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
