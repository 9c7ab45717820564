// Package metric provides Prometheus metrics for DynBind.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: the Registry, its counters and the /metrics handler
//   - collector.go: a collector reading live runtime statistics
//
// Metrics include:
//
//   - Root mutations and validation rejections by operation
//   - Frames pushed, popped and released, and push sizes
//   - Attached threads and namespaces
//
// A *Registry satisfies dynvar.Observer, so it can be handed straight to
// dynvar.WithObserver.
package metric
