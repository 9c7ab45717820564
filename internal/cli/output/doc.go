// Package output renders dynbind command results.
//
//   - formatter.go: Formatter interface, JSON and YAML formatters
//   - table.go: aligned text tables
//   - progress.go: live progress for the stress command
//
// Table output is for people; json and yaml are for scripts.
package output
