package config

// Config is the root configuration for the dynbind command.
type Config struct {
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
	Runtime RuntimeSection `koanf:"runtime"`
	Stress  StressSection  `koanf:"stress"`
}

// LogSection configures logging.
type LogSection struct {
	Level   string `koanf:"level"`
	Format  string `koanf:"format"`
	NoColor bool   `koanf:"no_color"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `koanf:"addr"`
	Path string `koanf:"path"`
}

// RuntimeSection configures the binding runtime registries.
type RuntimeSection struct {
	// ThreadShards is the shard count of the thread registry (power of 2).
	ThreadShards int `koanf:"thread_shards"`

	// NamespaceShards is the shard count of the namespace registry (power of 2).
	NamespaceShards int `koanf:"namespace_shards"`
}

// StressSection configures the stress command.
type StressSection struct {
	Workers    int `koanf:"workers"`
	Iterations int `koanf:"iterations"`

	// Vars is the number of vars each worker rebinds per iteration.
	Vars int `koanf:"vars"`

	// Depth is the number of nested frames pushed per iteration.
	Depth int `koanf:"depth"`

	// Rate limits iterations per second across all workers. 0 means unlimited.
	Rate  float64 `koanf:"rate"`
	Burst int     `koanf:"burst"`
}
