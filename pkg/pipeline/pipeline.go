// Package pipeline runs the circle-packing workflow end to end.
//
// A run goes through fixed stages:
//
//  1. Options: backend and strategy names are checked (INVALID_CONFIG).
//  2. Model: the domain and circle count become a [packing.Spec] and
//     [packing.Model] (INVALID_MODEL).
//  3. Guess: the optional initial-guess strategy produces n starting
//     centers (GENERATION_FAILED).
//  4. Solve: a fresh [solver.Adapter] hands the model to the engine.
//     Infeasible, timed-out and failed solves become INFEASIBLE, TIMEOUT and
//     BACKEND_ERROR errors.
//  5. Validate: the engine's answer is checked against every packing
//     constraint (VALIDATION_FAILED). Only then does a [packing.Result]
//     exist.
//
// Results are cached by a key covering every option, and saved to the run
// history when a store is configured. Nothing is retried; [Runner.Sweep] is
// the explicit multi-start policy.
//
// # Usage
//
//	runner := pipeline.NewRunner(ampl.New(ampl.Config{}), cache, history, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Domain:   packing.DefaultDomain,
//	    N:        5,
//	    Backend:  "baron",
//	    Strategy: "grid",
//	})
//	fmt.Println(res.Packing.Radius())
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circlepack/pkg/cache"
	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
	"github.com/matzehuels/circlepack/pkg/packing/guess"
	"github.com/matzehuels/circlepack/pkg/solver"
	"github.com/matzehuels/circlepack/pkg/store"
)

const (
	// DefaultN is the circle count of the stock problem.
	DefaultN = 5

	// DefaultSeed seeds the initial-guess source when none is given.
	DefaultSeed = uint64(42)

	// DefaultTolerance is the validator's ε.
	DefaultTolerance = packing.DefaultTolerance
)

// DefaultBackend is used when Options.Backend is empty.
const DefaultBackend = solver.DefaultBackend

// Options configures one pipeline run.
type Options struct {
	Domain packing.Domain
	N      int

	// Backend names the solver; empty selects DefaultBackend.
	Backend string
	// Strategy names the initial-guess strategy; empty sends no guess.
	Strategy string
	// Seed drives the seeded strategies; zero selects DefaultSeed.
	Seed uint64
	// TimeLimit bounds the solve; zero means unlimited.
	TimeLimit time.Duration
	// Tolerance is the validator's ε; zero selects DefaultTolerance.
	Tolerance float64

	// Refresh skips the cache lookup; the fresh result is still cached.
	Refresh bool

	Logger *log.Logger

	backend   solver.Backend
	strategy  guess.Strategy
	validated bool
}

// ValidateAndSetDefaults checks the solver-facing options and applies
// defaults. It is idempotent. Failures are INVALID_CONFIG; domain and circle
// count are left to the model stage.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Backend == "" {
		o.Backend = string(DefaultBackend)
	}
	b, err := solver.ParseBackend(o.Backend)
	if err != nil {
		return err
	}
	o.Backend, o.backend = string(b), b

	if o.Strategy != "" {
		s, err := guess.ParseStrategy(o.Strategy)
		if err != nil {
			return err
		}
		o.Strategy, o.strategy = string(s), s
	}

	if o.TimeLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "time_limit must be non-negative, got %s", o.TimeLimit)
	}
	if err := errors.ValidateFinite("tolerance", o.Tolerance); err != nil {
		return err
	}
	if o.Tolerance < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tolerance must be non-negative, got %g", o.Tolerance)
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ResultKeyOpts returns the cache key inputs for these options.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		XMin:      o.Domain.XMin,
		XMax:      o.Domain.XMax,
		YMin:      o.Domain.YMin,
		YMax:      o.Domain.YMax,
		N:         o.N,
		Backend:   o.Backend,
		Strategy:  o.Strategy,
		Seed:      o.Seed,
		TimeLimit: o.TimeLimit,
		Tolerance: o.Tolerance,
	}
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    string
	Packing  packing.Result
	Backend  solver.Backend
	Regime   solver.Regime
	Strategy guess.Strategy
	Seed     uint64
	CacheHit bool
	Stats    Stats
}

// Stats records sizes and stage timings of a run.
type Stats struct {
	Variables   int
	Constraints int
	// RadiusBound is the model's upper bound on the radius.
	RadiusBound float64
	// SolverCode is the engine's raw result code.
	SolverCode   int
	GuessTime    time.Duration
	SolveTime    time.Duration
	ValidateTime time.Duration
	TotalTime    time.Duration
}

type statsJSON struct {
	Variables   int     `json:"variables"`
	Constraints int     `json:"constraints"`
	RadiusBound float64 `json:"radius_bound"`
	SolverCode  int     `json:"solver_code"`
	GuessMS     float64 `json:"guess_ms"`
	SolveMS     float64 `json:"solve_ms"`
	ValidateMS  float64 `json:"validate_ms"`
	TotalMS     float64 `json:"total_ms"`
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// MarshalJSON reports durations in milliseconds.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		Variables:   s.Variables,
		Constraints: s.Constraints,
		RadiusBound: s.RadiusBound,
		SolverCode:  s.SolverCode,
		GuessMS:     ms(s.GuessTime),
		SolveMS:     ms(s.SolveTime),
		ValidateMS:  ms(s.ValidateTime),
		TotalMS:     ms(s.TotalTime),
	})
}

// MarshalJSON encodes the run for CLI output and API responses.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RunID    string         `json:"run_id"`
		Backend  solver.Backend `json:"backend"`
		Regime   solver.Regime  `json:"regime"`
		Strategy guess.Strategy `json:"strategy,omitempty"`
		Seed     uint64         `json:"seed"`
		CacheHit bool           `json:"cache_hit"`
		Packing  packing.Result `json:"packing"`
		Stats    Stats          `json:"stats"`
	}{r.RunID, r.Backend, r.Regime, r.Strategy, r.Seed, r.CacheHit, r.Packing, r.Stats})
}

// Record converts the run into a history record.
func (r Result) Record(now time.Time) store.Record {
	return store.Record{
		ID:        r.RunID,
		CreatedAt: now.UTC(),
		Backend:   string(r.Backend),
		Regime:    r.Regime.String(),
		Strategy:  string(r.Strategy),
		Seed:      r.Seed,
		Domain:    r.Packing.Domain(),
		N:         r.Packing.N(),
		Radius:    r.Packing.Radius(),
		Density:   r.Packing.Density(),
		Centers:   r.Packing.Centers(),
		Tolerance: r.Packing.Tolerance(),
		ElapsedMS: r.Stats.SolveTime.Milliseconds(),
		CacheHit:  r.CacheHit,
	}
}
