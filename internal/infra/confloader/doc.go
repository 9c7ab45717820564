// Package confloader loads DynBind configuration.
//
// Sources are merged with koanf, later ones overriding earlier ones:
//
//  1. Default values (the target struct as passed in)
//  2. Configuration file (YAML)
//  3. Environment variables (DYNBIND_ prefix)
//  4. Explicit overrides, typically from command-line flags
//
// Environment keys use a double underscore between sections so that keys
// may contain single underscores: DYNBIND_RUNTIME__THREAD_SHARDS maps to
// runtime.thread_shards.
//
// Watcher reports writes to watched files through fsnotify so callers can
// reload settings such as the log level without restarting.
package confloader
