// Package cli implements the circlepack command-line interface.
//
// Commands:
//   - solve: pack n circles with one backend and write the result
//   - sweep: try several seeds and backends, keep the largest radius
//   - render: re-render a saved result or run
//   - backends: list solver backends
//   - runs: browse the run history
//   - serve: run the HTTP API
//   - cache, config: housekeeping
//
// Settings come from an optional config file (--config) and are overridden
// by flags. All commands log through one charmbracelet logger; --verbose
// switches it to debug level.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/circlepack/pkg/buildinfo"
	"github.com/matzehuels/circlepack/pkg/cache"
	"github.com/matzehuels/circlepack/pkg/config"
	"github.com/matzehuels/circlepack/pkg/pipeline"
	"github.com/matzehuels/circlepack/pkg/solver"
	"github.com/matzehuels/circlepack/pkg/solver/ampl"
	"github.com/matzehuels/circlepack/pkg/store"
)

const appName = "circlepack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag.
	configPath string
	// engine overrides the AMPL engine; tests set it.
	engine solver.Engine
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pack equal circles into a rectangle with NLP solvers",
		Long:         `circlepack places n equal circles in an axis-aligned rectangle so that their common radius is as large as possible. The problem is handed to an NLP solver (BARON, Octeract, IPOPT, ...) through AMPL, and every answer is checked before it is reported.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml or .json)")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.sweepCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.backendsCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or returns the defaults when it is unset.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath)
	return cfg, nil
}

func (c *CLI) newEngine(cfg config.Config) solver.Engine {
	if c.engine != nil {
		return c.engine
	}
	return ampl.New(ampl.Config{
		Path:      cfg.AMPL.Path,
		SolverDir: cfg.AMPL.SolverDir,
		TempDir:   cfg.AMPL.TempDir,
		KeepLogs:  cfg.AMPL.KeepLogs,
		Logger:    c.Logger,
	})
}

// newRunner wires engine, cache and store from cfg.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	st, err := c.newStore(ctx, cfg)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	runner := pipeline.NewRunner(c.newEngine(cfg), ch, st, c.Logger)
	if cfg.Cache.Kind == config.CacheRedis && !noCache {
		runner.Keyer = cache.NewScopedKeyer(nil, appName+":")
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Kind {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	case config.CacheNone:
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore opens the run history. A nil store disables it.
func (c *CLI) newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Kind {
	case config.StoreMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.MongoURI,
			Database:   cfg.Store.Database,
			Collection: cfg.Store.Collection,
		})
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreNone:
		return nil, nil
	}
	path, err := storePath(cfg)
	if err != nil {
		c.Logger.Warn("no history file, run history disabled", "err", err)
		return nil, nil
	}
	return store.NewFileStore(path)
}

// cacheDir returns the configured cache directory, defaulting to
// ~/.cache/circlepack.
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

func storePath(cfg config.Config) (string, error) {
	if cfg.Store.Path != "" {
		return cfg.Store.Path, nil
	}
	return store.DefaultFilePath()
}
