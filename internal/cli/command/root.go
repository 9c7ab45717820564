package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/dynbind-go/internal/cli/output"
	"github.com/yndnr/dynbind-go/internal/config"
	"github.com/yndnr/dynbind-go/internal/core/dynvar"
	"github.com/yndnr/dynbind-go/internal/infra/buildinfo"
	"github.com/yndnr/dynbind-go/internal/infra/confloader"
	"github.com/yndnr/dynbind-go/internal/telemetry/logger"
)

// Metadata keys set by the Before hook.
const (
	metaConfig  = "config"
	metaLogger  = "logger"
	metaWatcher = "watcher"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "dynbind",
		Usage:   "Dynamically scoped, thread-local bindings",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			DemoCommand(),
			StressCommand(),
			VersionCommand(),
		},
		Metadata: make(map[string]any),
		Before:   before,
		After:    after,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"DYNBIND_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config    string
	LogLevel  string
	LogFormat string

	// Output format
	Output string // table, json, yaml
	Wide   bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:    c.String("config"),
		LogLevel:  c.String("log-level"),
		LogFormat: c.String("log-format"),
		Output:    c.String("output"),
		Wide:      c.Bool("wide"),
	}
}

// overrides maps explicitly set flags onto config keys so they win over the
// file and the environment.
func overrides(c *cli.Context) map[string]any {
	values := make(map[string]any)
	if c.IsSet("log-level") {
		values["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		values["log.format"] = c.String("log-format")
	}
	return values
}

func before(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	if _, err := output.ParseFormat(flags.Output); err != nil {
		return err
	}

	cfg, loader, err := config.Load(flags.Config, overrides(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  errWriter(c),
		NoColor: cfg.Log.NoColor,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLogger] = log

	if loader.FilePath() != "" {
		w, err := watchConfig(loader, log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			c.App.Metadata[metaWatcher] = w
		}
	}
	return nil
}

func after(c *cli.Context) error {
	if w, ok := c.App.Metadata[metaWatcher].(*confloader.Watcher); ok {
		return w.Stop()
	}
	return nil
}

// watchConfig reloads the configuration file on change and applies the new
// log level. Other settings take effect on the next run.
func watchConfig(loader *confloader.Loader, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(loader.FilePath()); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		cfg, err := config.Reload(loader)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("config reloaded", "path", path, "log_level", cfg.Log.Level)
	})
	w.StartAsync()
	return w, nil
}

// GetConfig retrieves the loaded configuration, or the defaults when the
// Before hook has not run.
func GetConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// GetLogger retrieves the configured logger.
func GetLogger(c *cli.Context) logger.Logger {
	if l, ok := c.App.Metadata[metaLogger].(logger.Logger); ok {
		return l
	}
	return logger.Default()
}

// newRuntime builds a runtime sized from the configuration.
func newRuntime(c *cli.Context, opts ...dynvar.Option) *dynvar.Runtime {
	cfg := GetConfig(c)
	base := []dynvar.Option{
		dynvar.WithLogger(GetLogger(c)),
		dynvar.WithThreadShards(cfg.Runtime.ThreadShards),
		dynvar.WithNamespaceShards(cfg.Runtime.NamespaceShards),
	}
	return dynvar.NewRuntime(append(base, opts...)...)
}

// render writes data to stdout in the selected output format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, flags.Wide).Format(outWriter(c), data)
}

func outWriter(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// PrintError prints err to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
