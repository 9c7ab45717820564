package metric

import "github.com/prometheus/client_golang/prometheus"

// RuntimeStats is the read-only view of a runtime the collector samples.
type RuntimeStats interface {
	ThreadCount() int
	Namespaces() []string
}

// Collector reports live runtime statistics at scrape time.
type Collector struct {
	stats RuntimeStats

	threads    *prometheus.Desc
	namespaces *prometheus.Desc
}

// NewCollector creates a collector sampling stats.
func NewCollector(stats RuntimeStats) *Collector {
	return &Collector{
		stats: stats,
		threads: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "registry", "threads"),
			"Threads present in the thread registry at scrape time.",
			nil, nil,
		),
		namespaces: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "registry", "namespaces"),
			"Namespaces present in the namespace registry at scrape time.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.threads
	ch <- c.namespaces
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.threads, prometheus.GaugeValue, float64(c.stats.ThreadCount()))
	ch <- prometheus.MustNewConstMetric(c.namespaces, prometheus.GaugeValue, float64(len(c.stats.Namespaces())))
}
