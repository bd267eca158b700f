package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/circlepack/pkg/cache"
	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/observability"
	"github.com/matzehuels/circlepack/pkg/packing"
	"github.com/matzehuels/circlepack/pkg/packing/guess"
	"github.com/matzehuels/circlepack/pkg/solver"
	"github.com/matzehuels/circlepack/pkg/store"
)

// cacheKeyType labels result lookups in observability hooks.
const cacheKeyType = "result"

// Runner executes pipeline runs against one engine.
//
// A Runner holds no per-run state: every Execute builds its own adapter, so
// the CLI's sweep and the API server share one Runner across goroutines.
type Runner struct {
	Engine solver.Engine
	Cache  cache.Cache
	Keyer  cache.Keyer
	// Store receives a record of every successful run; nil disables history.
	Store  store.Store
	Logger *log.Logger
	// Grace overrides the adapter's hard-deadline slack when positive.
	Grace time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil store
// disables run history, and a nil logger logs to the default logger.
func NewRunner(engine solver.Engine, c cache.Cache, st store.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Engine: engine,
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		Store:  st,
		Logger: logger,
	}
}

// Execute runs options → model → guess → solve → validate. On success the
// result is cached and recorded; on failure the returned error carries the
// code of the stage that failed.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	spec, err := packing.NewSpec(opts.Domain, opts.N)
	if err != nil {
		return nil, err
	}
	model, err := packing.BuildModel(spec)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:    uuid.NewString(),
		Backend:  opts.backend,
		Regime:   opts.backend.Regime(),
		Strategy: opts.strategy,
		Seed:     opts.Seed,
	}
	res.Stats.Variables = model.NumVariables()
	res.Stats.Constraints = model.NumConstraints()
	res.Stats.RadiusBound = model.UpperBound()

	guessStart := time.Now()
	pts, err := initialGuess(spec, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.GuessTime = time.Since(guessStart)

	key := r.keyer().ResultKey(opts.ResultKeyOpts())
	if !opts.Refresh {
		if cand, code, hit := r.lookup(ctx, key, spec, opts); hit {
			res.Packing, res.CacheHit = cand, true
			res.Stats.SolverCode = code
			res.Stats.TotalTime = time.Since(start)
			logger.Info("cached packing", "n", spec.N(), "radius", cand.Radius(), "backend", res.Backend)
			r.record(ctx, res)
			return res, nil
		}
	}

	adapter, err := solver.NewAdapter(r.Engine, opts.backend, solver.Options{
		TimeLimit: opts.TimeLimit,
		Grace:     r.Grace,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	hooks := observability.Solve()
	hooks.OnSolveStart(ctx, string(res.Backend), spec.N())
	logger.Debug("solving", "backend", res.Backend, "regime", res.Regime, "n", spec.N(), "guess", opts.Strategy)

	out, err := adapter.Solve(ctx, model, pts)
	res.Stats.SolveTime = out.Elapsed
	if err != nil {
		hooks.OnSolveComplete(ctx, string(res.Backend), "cancelled", 0, time.Since(start))
		return nil, err
	}
	res.Stats.SolverCode = out.Code
	if err := out.Err(); err != nil {
		hooks.OnSolveComplete(ctx, string(res.Backend), out.Status.String(), 0, out.Elapsed)
		logger.Warn("solver did not converge", "backend", res.Backend, "status", out.Status, "code", out.Code)
		return nil, err
	}

	validateStart := time.Now()
	packed, err := packing.Validate(spec, out.Candidate, opts.Tolerance)
	res.Stats.ValidateTime = time.Since(validateStart)
	if err != nil {
		hooks.OnSolveComplete(ctx, string(res.Backend), "invalid", 0, out.Elapsed)
		logger.Warn("solver answer rejected", "backend", res.Backend, "err", err)
		if vs, verr := packing.Violations(spec, out.Candidate, opts.Tolerance); verr == nil {
			for _, v := range vs {
				logger.Debug("violated", "constraint", v.Constraint, "amount", v.Amount)
			}
		}
		return nil, err
	}
	hooks.OnSolveComplete(ctx, string(res.Backend), out.Status.String(), packed.Radius(), out.Elapsed)

	res.Packing = packed
	res.Stats.TotalTime = time.Since(start)
	r.remember(ctx, key, out)
	r.record(ctx, res)

	logger.Info("solved",
		"n", spec.N(),
		"radius", packed.Radius(),
		"backend", res.Backend,
		"regime", res.Regime,
		"duration", res.Stats.SolveTime)
	return res, nil
}

// initialGuess runs the configured strategy, or returns nil when none is set.
func initialGuess(spec packing.Spec, opts Options) ([]packing.Circle, error) {
	if opts.strategy == "" {
		return nil, nil
	}
	gen, err := guess.New(opts.strategy, opts.Seed)
	if err != nil {
		return nil, err
	}
	pts, err := gen.Generate(spec)
	if err != nil {
		if errors.GetCode(err) == "" {
			return nil, errors.Wrap(errors.ErrCodeGeneration, err, "initial guess (%s)", opts.strategy)
		}
		return nil, err
	}
	return pts, nil
}

// cachedRun is the cache payload: the raw candidate, re-validated on read.
type cachedRun struct {
	Centers []packing.Circle `json:"centers"`
	Radius  float64          `json:"radius"`
	Code    int              `json:"code"`
}

func (r *Runner) lookup(ctx context.Context, key string, spec packing.Spec, opts Options) (packing.Result, int, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		if err != nil {
			opts.Logger.Debug("cache lookup failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, cacheKeyType)
		return packing.Result{}, 0, false
	}

	var c cachedRun
	if err := json.Unmarshal(data, &c); err != nil {
		hooks.OnCacheMiss(ctx, cacheKeyType)
		return packing.Result{}, 0, false
	}
	res, err := packing.Validate(spec, packing.Candidate{Centers: c.Centers, Radius: c.Radius}, opts.Tolerance)
	if err != nil {
		opts.Logger.Debug("discarding invalid cache entry", "key", key, "err", err)
		hooks.OnCacheMiss(ctx, cacheKeyType)
		return packing.Result{}, 0, false
	}
	hooks.OnCacheHit(ctx, cacheKeyType)
	return res, c.Code, true
}

func (r *Runner) remember(ctx context.Context, key string, out solver.Outcome) {
	data, err := json.Marshal(cachedRun{Centers: out.Candidate.Centers, Radius: out.Candidate.Radius, Code: out.Code})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLResult); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

func (r *Runner) record(ctx context.Context, res *Result) {
	if r.Store == nil {
		return
	}
	if err := r.Store.Save(ctx, res.Record(time.Now())); err != nil {
		r.Logger.Warn("saving run history failed", "run", res.RunID, "err", err)
	}
}

func (r *Runner) keyer() cache.Keyer {
	if r.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return r.Keyer
}

// Close releases the cache and the store.
func (r *Runner) Close(ctx context.Context) error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close(ctx))
	}
	return errors.Join(errs...)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
