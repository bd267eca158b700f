package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circlepack/pkg/config"
	"github.com/matzehuels/circlepack/pkg/pipeline"
)

type solveOpts struct {
	problem problemFlags
	out     outputOpts
	pick    bool
	asJSON  bool
	centers bool
}

func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Pack n equal circles with one solver backend",
		Long: `Solve builds the packing model for the configured domain and circle count,
hands it to the chosen backend and validates the answer.

Exit status is 2 when the backend reports the problem infeasible or runs out
of time, and 1 for every other failure.`,
		Example: `  circlepack solve -n 7 --backend baron --time-limit 60s
  circlepack solve -n 12 --strategy grid -o packing.svg
  circlepack solve --pick -f svg,pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, &opts.problem)
			if err != nil {
				return err
			}
			if opts.pick {
				if cfg.Backend, err = pickBackend(cfg.Backend); err != nil {
					return err
				}
			}
			return c.runSolve(cmd.Context(), cfg, &opts)
		},
	}

	opts.problem.bind(cmd)
	bindOutputFlags(cmd, &opts.out)
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the backend interactively")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the run as JSON instead of a summary")
	cmd.Flags().BoolVar(&opts.centers, "centers", false, "also print the circle centers")
	return cmd
}

func bindOutputFlags(cmd *cobra.Command, o *outputOpts) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (one format) or base path (several)")
	cmd.Flags().StringSliceVarP(&o.formats, "format", "f", nil, "output formats: svg, graphviz, dot, png, pdf, json")
	cmd.Flags().Float64Var(&o.width, "width", 0, "drawing width in pixels")
	cmd.Flags().BoolVar(&o.labels, "labels", false, "number the circles in drawings")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func (c *CLI) runSolve(ctx context.Context, cfg config.Config, opts *solveOpts) error {
	runner, err := c.newRunner(ctx, cfg, opts.problem.noCache)
	if err != nil {
		return err
	}
	defer closeRunner(c, runner)

	popts := cfg.Options()
	var spin *Spinner
	if !opts.asJSON && interactive(os.Stderr) {
		spin = newSpinner(ctx, os.Stderr, fmt.Sprintf("solving n=%d with %s", popts.N, popts.Backend), popts.TimeLimit)
		spin.Start()
	}
	res, err := runner.Execute(ctx, popts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printResult(res)
		if opts.centers {
			fmt.Fprintln(stdout, centerTable(res))
		}
	}

	if !opts.out.requested() {
		return nil
	}
	paths, err := writeArtifacts(ctx, res.Packing, &opts.out)
	for _, p := range paths {
		if !opts.asJSON {
			printFile(p)
		}
	}
	return err
}

// closeRunner releases cache and store connections with a fresh context,
// since the command's may already be cancelled.
func closeRunner(c *CLI, r *pipeline.Runner) {
	if err := r.Close(context.Background()); err != nil {
		c.Logger.Debug("closing runner", "err", err)
	}
}
