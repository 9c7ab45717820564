// Package command provides the dynbind CLI commands.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, config and logger setup
//   - demo.go: scripted binding scenarios
//   - stress.go: concurrent load with optional metrics endpoint
//   - version.go: build information
//
// Commands follow a consistent pattern of parsing flags, calling the
// appropriate service, and formatting output.
package command
