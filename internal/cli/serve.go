package cli

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/breadthfirst/pkg/buildinfo"
	"github.com/matzehuels/breadthfirst/pkg/metrics"
	"github.com/matzehuels/breadthfirst/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

The [layout] table of the config file provides the defaults every request is
decoded over. Saved layouts go to the store selected in [store]; layouts and
renders are cached in the backend selected in [cache]. Prometheus metrics are
exposed on /metrics unless disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, noMetrics)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: server.addr from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache, noMetrics bool) error {
	runner, cfg, err := c.newConfiguredRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := cfg.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("close store", "error", err)
		}
	}()

	if addr == "" {
		addr = cfg.Server.Addr
	}
	enabled := !noMetrics && (cfg.Server.Metrics == nil || *cfg.Server.Metrics)

	var metricsHandler http.Handler
	if enabled {
		m := metrics.New()
		m.Install()
		metricsHandler = m.Handler()
	}

	srv := server.New(server.Config{
		Runner:         runner,
		Store:          st,
		Logger:         c.Logger,
		Metrics:        metricsHandler,
		Defaults:       cfg.Layout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
		Version:        buildinfo.Short(),
	})

	printSuccess("Serving on %s", addr)
	printKeyValue("cache", cfg.Cache.Backend)
	printKeyValue("store", cfg.Store.Backend)
	printKeyValue("metrics", strconv.FormatBool(enabled))
	printNewline()

	return srv.ListenAndServe(ctx, addr)
}
