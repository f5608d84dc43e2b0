package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sankey/pkg/buildinfo"
	"github.com/matzehuels/sankey/pkg/cache"
	"github.com/matzehuels/sankey/pkg/config"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sankey"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag; empty means config.DefaultPath.
	configPath string
	// cfg is loaded before any subcommand runs.
	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sankey computes flow diagram layouts",
		Long:         `Sankey lays out weighted flow graphs as Sankey diagrams: nodes are placed in columns, stacked by flow volume and relaxed so links stay short, then links are routed through their end nodes.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default file
// when it exists.
func (c *CLI) loadConfig() error {
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", c.configPath)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, c.cfg.Cache.Keyer(), c.Logger)
	runner.TTL = c.cfg.Cache.TTL.Duration
	return runner, nil
}

// newCache opens the configured backend. An unreachable backend degrades to
// no caching instead of failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.cfg.Cache
	if cfg.Backend == cache.BackendFile || cfg.Backend == "" {
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, continuing without cache", "err", err)
			return cache.NewNullCache(), nil
		}
		cfg.Dir = dir
	}
	cc, err := cfg.Open(ctx)
	if err != nil {
		if cfg.Backend == cache.BackendRedis {
			c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Backend, "err", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return cc, nil
}
