package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sankey/internal/server"
	"github.com/matzehuels/sankey/pkg/config"
	"github.com/matzehuels/sankey/pkg/observability"
	"github.com/matzehuels/sankey/pkg/observability/prom"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

Endpoints:
  POST /v1/layout   compute a layout from {"nodes", "links", "options"}
  GET  /healthz     liveness probe
  GET  /metrics     Prometheus metrics

When a config file is in use, edits to its [layout] and [server] body limit
take effect without a restart. Changes to the listen address or the cache
need a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	cfg := c.cfg

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := prom.New(reg)
	observability.SetLayoutHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := server.New(server.Options{
		Runner:       runner,
		Logger:       c.Logger,
		Gatherer:     reg,
		Defaults:     cfg.Layout.Options(),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	if path := c.activeConfigPath(); path != "" {
		stop, err := c.watchConfig(path, srv, cfg.Server.Addr)
		if err != nil {
			c.Logger.Warn("config watcher unavailable (hot reload disabled)", "err", err)
		} else {
			defer stop()
		}
	}

	printInfo("Serving on %s", cfg.Server.Addr)
	printKeyValue("cache", cfg.Cache.Backend)
	printKeyValue("body limit", fmt.Sprintf("%d bytes", cfg.Server.MaxBodyBytes))

	return server.ListenAndServe(ctx, cfg.Server.Addr, srv, c.Logger)
}

// watchConfig hot-reloads request defaults from path into srv.
func (c *CLI) watchConfig(path string, srv *server.Server, addr string) (func(), error) {
	loader, err := config.NewLoader(path, c.Logger)
	if err != nil {
		return nil, err
	}
	loader.OnChange(func(nc *config.Config) {
		srv.Reconfigure(nc.Layout.Options(), nc.Server.MaxBodyBytes)
		if nc.Server.Addr != addr {
			c.Logger.Warn("listen address changed, restart to apply", "addr", nc.Server.Addr)
		}
	})
	return loader.Watch()
}

// activeConfigPath returns the config file in use, or "" when running on
// built-in defaults.
func (c *CLI) activeConfigPath() string {
	if c.configPath != "" {
		return c.configPath
	}
	def := config.DefaultPath()
	if def == "" {
		return ""
	}
	if _, err := os.Stat(def); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return def
}
