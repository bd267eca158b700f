package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// DefaultConcurrency bounds parallel solves in a sweep.
const DefaultConcurrency = 4

// SweepOptions describes a multi-start run: every backend is tried with
// every seed, each run with its own adapter.
type SweepOptions struct {
	Options
	// Seeds to try; empty means the single Options.Seed.
	Seeds []uint64
	// Backends to try; empty means the single Options.Backend.
	Backends []string
	// Concurrency caps simultaneous solves; zero selects DefaultConcurrency.
	Concurrency int
}

// SweepRun is one attempt of a sweep.
type SweepRun struct {
	Backend string
	Seed    uint64
	Result  *Result
	Err     error
}

// SweepResult holds every attempt and the best validated packing.
type SweepResult struct {
	Best *Result
	Runs []SweepRun
}

// Sweep runs the cross product of backends and seeds and keeps the result
// with the largest validated radius; ties go to the earlier run. Failed runs
// are reported in Runs and do not stop the others. When no run succeeds the
// error of the first run is returned alongside the attempts.
func (r *Runner) Sweep(ctx context.Context, opts SweepOptions) (*SweepResult, error) {
	backends := opts.Backends
	if len(backends) == 0 {
		backends = []string{opts.Backend}
	}
	seeds := opts.Seeds
	if len(seeds) == 0 {
		seeds = []uint64{opts.Seed}
	}

	runs := make([]SweepRun, 0, len(backends)*len(seeds))
	for _, b := range backends {
		// Reject bad names before any engine call.
		check := opts.Options
		check.Backend, check.validated = b, false
		if err := check.ValidateAndSetDefaults(); err != nil {
			return nil, err
		}
		for _, s := range seeds {
			runs = append(runs, SweepRun{Backend: check.Backend, Seed: s})
		}
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range runs {
		g.Go(func() error {
			o := opts.Options
			o.Backend, o.Seed, o.validated = runs[i].Backend, runs[i].Seed, false
			runs[i].Result, runs[i].Err = r.Execute(gctx, o)
			if err := ctx.Err(); err != nil {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &SweepResult{Runs: runs}
	for _, run := range runs {
		if run.Err != nil {
			continue
		}
		if out.Best == nil || run.Result.Packing.Radius() > out.Best.Packing.Radius() {
			out.Best = run.Result
		}
	}
	if out.Best == nil {
		if len(runs) == 0 {
			return out, errors.New(errors.ErrCodeInvalidConfig, "sweep has nothing to run")
		}
		return out, runs[0].Err
	}
	r.Logger.Info("sweep finished", "runs", len(runs), "best_radius", out.Best.Packing.Radius(), "backend", out.Best.Backend, "seed", out.Best.Seed)
	return out, nil
}
