package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dynbind"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Root protocol
	RootMutations        *prometheus.CounterVec
	ValidationRejections *prometheus.CounterVec

	// Thread binding stacks
	FramesPushed        prometheus.Counter
	FramesPopped        prometheus.Counter
	FramesReleasedTotal prometheus.Counter
	PushSize            prometheus.Histogram
	ThreadsActive       prometheus.Gauge
}

// NewRegistry creates a registry with Go runtime and process collectors
// plus every DynBind metric.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		RootMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "root_mutations_total",
			Help:      "Committed root mutations by operation.",
		}, []string{"op"}),
		ValidationRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Values rejected by a var validator, by operation.",
		}, []string{"op"}),
		FramesPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_pushed_total",
			Help:      "Thread binding frames pushed.",
		}),
		FramesPopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_popped_total",
			Help:      "Thread binding frames popped.",
		}),
		FramesReleasedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_released_total",
			Help:      "Thread binding frames dropped by a full release.",
		}),
		PushSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "push_size_vars",
			Help:      "Number of vars bound per push.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		ThreadsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threads_active",
			Help:      "Threads currently attached to the runtime.",
		}),
	}

	reg.MustRegister(
		r.RootMutations,
		r.ValidationRejections,
		r.FramesPushed,
		r.FramesPopped,
		r.FramesReleasedTotal,
		r.PushSize,
		r.ThreadsActive,
	)
	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing r in Prometheus format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Register adds an extra collector to the registry.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// RootChanged records a committed root mutation.
func (r *Registry) RootChanged(op string) {
	r.RootMutations.WithLabelValues(op).Inc()
}

// ValidationRejected records a validator rejection.
func (r *Registry) ValidationRejected(op string) {
	r.ValidationRejections.WithLabelValues(op).Inc()
}

// FramePushed records a push binding size vars.
func (r *Registry) FramePushed(size int) {
	r.FramesPushed.Inc()
	r.PushSize.Observe(float64(size))
}

// FramePopped records a pop.
func (r *Registry) FramePopped() {
	r.FramesPopped.Inc()
}

// FramesReleased records a release dropping depth frames.
func (r *Registry) FramesReleased(depth int) {
	r.FramesReleasedTotal.Add(float64(depth))
}

// ThreadAttached records a thread joining the registry.
func (r *Registry) ThreadAttached() {
	r.ThreadsActive.Inc()
}

// ThreadDetached records a thread leaving the registry.
func (r *Registry) ThreadDetached() {
	r.ThreadsActive.Dec()
}
