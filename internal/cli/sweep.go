package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circlepack/pkg/config"
	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/pipeline"
)

type sweepOpts struct {
	problem     problemFlags
	out         outputOpts
	seeds       []int
	backends    []string
	concurrency int
}

func (c *CLI) sweepCommand() *cobra.Command {
	var opts sweepOpts
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Solve from several seeds and backends and keep the best packing",
		Long: `Sweep runs every combination of --seeds and --backends as a separate solve,
a few at a time, and reports the validated packing with the largest radius.
Failed runs are listed but do not stop the others.`,
		Example: `  circlepack sweep -n 10 --strategy random --seeds 1,2,3,4 --backends ipopt,couenne`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, &opts.problem)
			if err != nil {
				return err
			}
			return c.runSweep(cmd.Context(), cfg, &opts)
		},
	}

	opts.problem.bind(cmd)
	bindOutputFlags(cmd, &opts.out)
	cmd.Flags().IntSliceVar(&opts.seeds, "seeds", []int{1, 2, 3, 4}, "seeds to try")
	cmd.Flags().StringSliceVar(&opts.backends, "backends", nil, "backends to try (default --backend)")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", pipeline.DefaultConcurrency, "solves running at once")
	_ = cmd.RegisterFlagCompletionFunc("backends", completeBackends)
	return cmd
}

func (c *CLI) runSweep(ctx context.Context, cfg config.Config, opts *sweepOpts) error {
	seeds := make([]uint64, 0, len(opts.seeds))
	for _, s := range opts.seeds {
		if s < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "seeds must be non-negative, got %d", s)
		}
		seeds = append(seeds, uint64(s))
	}

	runner, err := c.newRunner(ctx, cfg, opts.problem.noCache)
	if err != nil {
		return err
	}
	defer closeRunner(c, runner)

	sopts := pipeline.SweepOptions{
		Options:     cfg.Options(),
		Seeds:       seeds,
		Backends:    opts.backends,
		Concurrency: opts.concurrency,
	}
	var spin *Spinner
	if interactive(os.Stderr) {
		spin = newSpinner(ctx, os.Stderr, fmt.Sprintf("sweeping %d seeds", len(seeds)), 0)
		spin.Start()
	}
	prog := newProgress(c.Logger)
	sr, err := runner.Sweep(ctx, sopts)
	if spin != nil {
		spin.Stop()
	}
	if sr != nil {
		fmt.Fprintln(stdout, sweepTable(sr))
	}
	if err != nil {
		return err
	}
	prog.done("sweep finished", "runs", len(sr.Runs))

	printResult(sr.Best)
	if !opts.out.requested() {
		return nil
	}
	paths, err := writeArtifacts(ctx, sr.Best.Packing, &opts.out)
	for _, p := range paths {
		printFile(p)
	}
	return err
}

func sweepTable(sr *pipeline.SweepResult) string {
	rows := make([][]string, 0, len(sr.Runs))
	for _, run := range sr.Runs {
		radius, status := "", ""
		switch {
		case run.Err != nil:
			code := string(errors.GetCode(run.Err))
			if code == "" {
				code = "failed"
			}
			status = StyleError.Render(code)
		case run.Result == sr.Best:
			radius = fmt.Sprintf("%.9g", run.Result.Packing.Radius())
			status = StyleSuccess.Render("best")
		default:
			radius = fmt.Sprintf("%.9g", run.Result.Packing.Radius())
			status = "ok"
		}
		rows = append(rows, []string{run.Backend, fmt.Sprint(run.Seed), radius, status})
	}
	return newTable("Backend", "Seed", "Radius", "Status").Rows(rows...).Render()
}
