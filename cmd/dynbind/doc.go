// Package main provides the entry point for dynbind.
//
// The CLI exercises the binding runtime:
//
//   - demo: run the scripted binding scenarios and report each step
//   - stress: concurrent push/set/pop and root mutation load, with an
//     optional Prometheus endpoint
//   - version: build information
//
// Usage:
//
//	dynbind [global flags] command [flags]
//	dynbind demo --wide
//	dynbind -o json stress -n 16 -i 100000 --metrics-addr :9090
package main
