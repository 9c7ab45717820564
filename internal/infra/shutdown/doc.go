// Package shutdown coordinates graceful termination of long-running
// dynbind commands.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown("metrics server", srv.Shutdown)
//	err := h.WaitContext(ctx) // SIGINT, SIGTERM or ctx cancellation
package shutdown
