// Package config provides DynBind configuration.
//
//   - spec.go: Config struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of loaded values
//   - load.go: Loading through internal/infra/confloader
//
// Sources are files, DYNBIND_ environment variables and command-line
// overrides.
package config
