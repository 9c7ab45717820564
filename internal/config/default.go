package config

import "github.com/yndnr/dynbind-go/pkg/cmap"

// Default configuration values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultMetricsPath = "/metrics"

	DefaultStressWorkers    = 8
	DefaultStressIterations = 10000
	DefaultStressVars       = 4
	DefaultStressDepth      = 3
	DefaultStressBurst      = 100
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Path: DefaultMetricsPath,
		},
		Runtime: RuntimeSection{
			ThreadShards:    cmap.DefaultShardCount,
			NamespaceShards: cmap.DefaultShardCount,
		},
		Stress: StressSection{
			Workers:    DefaultStressWorkers,
			Iterations: DefaultStressIterations,
			Vars:       DefaultStressVars,
			Depth:      DefaultStressDepth,
			Burst:      DefaultStressBurst,
		},
	}
}
