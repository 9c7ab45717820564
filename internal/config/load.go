package config

import (
	"fmt"

	"github.com/yndnr/dynbind-go/internal/infra/confloader"
)

// Load builds the configuration from defaults, the optional file at path,
// DYNBIND_ environment variables and overrides, then verifies it. The
// returned loader can be used to reload the same sources.
func Load(path string, overrides map[string]any) (*Config, *confloader.Loader, error) {
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)

	cfg := Default()
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader, nil
}

// Reload rereads every source of loader into a fresh default configuration.
func Reload(loader *confloader.Loader) (*Config, error) {
	cfg := Default()
	if err := loader.Reload(cfg); err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
