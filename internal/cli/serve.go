package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/circlepack/pkg/api"
	"github.com/matzehuels/circlepack/pkg/observability"
)

const shutdownTimeout = 10 * time.Second

type serveOpts struct {
	addr          string
	maxConcurrent int
	maxN          int
	maxTimeLimit  time.Duration
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Long: `Serve exposes POST /v1/solve, the backend list, the run history and
Prometheus metrics on /metrics. It uses the same config file as solve.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&opts.maxConcurrent, "max-concurrent", api.DefaultMaxConcurrent, "solves running at once")
	cmd.Flags().IntVar(&opts.maxN, "max-n", api.DefaultMaxN, "largest circle count accepted")
	cmd.Flags().DurationVar(&opts.maxTimeLimit, "max-time-limit", 5*time.Minute, "cap on requested time limits (0 for none)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeRunner(c, runner)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewPrometheus(reg)
	observability.SetSolveHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetAPIHooks(metrics)
	defer observability.Reset()

	srv := &http.Server{
		Addr: opts.addr,
		Handler: api.New(runner, api.Options{
			MaxConcurrent: opts.maxConcurrent,
			MaxN:          opts.maxN,
			MaxTimeLimit:  opts.maxTimeLimit,
			Gatherer:      reg,
			Logger:        c.Logger,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", opts.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	c.Logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
