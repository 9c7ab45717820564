// Package logger provides structured logging for DynBind.
//
// This package wraps log/slog:
//
//   - logger.go: handler selection (JSON, or colourised text via tint)
//   - context.go: context propagation of loggers and thread IDs
//   - redact.go: masking of attributes whose keys look sensitive
//
// The level is held in a process-wide slog.LevelVar so it can be changed
// at runtime, for example by the configuration watcher.
package logger
