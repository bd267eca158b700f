package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circlepack/pkg/config"
)

// problemFlags are the flags shared by solve and sweep. Only flags the user
// set override the config file.
type problemFlags struct {
	n         int
	backend   string
	strategy  string
	seed      uint64
	timeLimit time.Duration
	tolerance float64
	xMin      float64
	xMax      float64
	yMin      float64
	yMax      float64
	noCache   bool
}

func (f *problemFlags) bind(cmd *cobra.Command) {
	d := config.Default()
	fl := cmd.Flags()
	fl.IntVarP(&f.n, "circles", "n", d.N, "number of circles")
	fl.StringVarP(&f.backend, "backend", "b", d.Backend, "solver backend (see 'circlepack backends')")
	fl.StringVarP(&f.strategy, "strategy", "s", "", "initial guess: zero, random, grid (default none)")
	fl.Uint64Var(&f.seed, "seed", d.Seed, "seed for the random and grid strategies")
	fl.DurationVarP(&f.timeLimit, "time-limit", "t", 0, "solver time limit, e.g. 90s (default unlimited)")
	fl.Float64Var(&f.tolerance, "tolerance", d.Tolerance, "validation tolerance")
	fl.Float64Var(&f.xMin, "x-min", d.Domain.XMin, "domain left edge")
	fl.Float64Var(&f.xMax, "x-max", d.Domain.XMax, "domain right edge")
	fl.Float64Var(&f.yMin, "y-min", d.Domain.YMin, "domain bottom edge")
	fl.Float64Var(&f.yMax, "y-max", d.Domain.YMax, "domain top edge")
	fl.BoolVar(&f.noCache, "no-cache", false, "neither read nor write the result cache")

	_ = cmd.RegisterFlagCompletionFunc("backend", completeBackends)
	_ = cmd.RegisterFlagCompletionFunc("strategy", completeStrategies)
}

// apply copies the flags the user set onto cfg.
func (f *problemFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	set := func(name string, fn func()) {
		if fl.Changed(name) {
			fn()
		}
	}
	set("circles", func() { cfg.N = f.n })
	set("backend", func() { cfg.Backend = f.backend })
	set("strategy", func() { cfg.Strategy = f.strategy })
	set("seed", func() { cfg.Seed = f.seed })
	set("time-limit", func() { cfg.TimeLimit = config.Duration(f.timeLimit) })
	set("tolerance", func() { cfg.Tolerance = f.tolerance })
	set("x-min", func() { cfg.Domain.XMin = f.xMin })
	set("x-max", func() { cfg.Domain.XMax = f.xMax })
	set("y-min", func() { cfg.Domain.YMin = f.yMin })
	set("y-max", func() { cfg.Domain.YMax = f.yMax })
}

// settings loads the config file and applies the flags on top.
func (c *CLI) settings(cmd *cobra.Command, f *problemFlags) (config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return cfg, err
	}
	f.apply(cmd, &cfg)
	return cfg, cfg.Validate()
}
