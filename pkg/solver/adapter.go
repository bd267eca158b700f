// Package solver wraps external NLP engines behind a uniform contract.
//
// An [Adapter] binds one [Engine] to one [Backend] and turns a packing model
// plus an optional starting point into an [Outcome]: converged, infeasible,
// timed out, or backend error. Backends come from a closed enumeration and are
// validated before any engine is contacted.
//
// # Optimality
//
// Every backend carries a [Regime]. Local answers (ipopt) are stationary
// points near the starting guess; global answers come from engines that
// attempt to certify the best radius. The regime travels with the outcome so
// callers do not over-trust a local result.
//
// # Time limits
//
// The configured budget is passed to the engine as a solver directive and is
// also enforced by the adapter as a hard deadline of budget plus a grace
// period. Either way the outcome is [StatusTimeout], never a fabricated
// packing.
//
// # Concurrency
//
// An Adapter is not reentrant: a concurrent Solve on the same adapter fails
// with a BUSY error. Build one adapter per goroutine; adapters share nothing.
package solver

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
)

// minGrace is the smallest slack added to the time limit before the adapter
// abandons a running engine.
const minGrace = 5 * time.Second

// Options configures an Adapter.
type Options struct {
	// TimeLimit is the wall-clock budget for one solve; zero means unlimited.
	TimeLimit time.Duration
	// Grace is added to TimeLimit for the hard deadline. Zero selects
	// max(5s, TimeLimit/10).
	Grace time.Duration
	// Logger receives debug output; nil discards it.
	Logger *log.Logger
}

// Adapter runs solves for one backend on one engine.
type Adapter struct {
	engine  Engine
	backend Backend
	opts    Options
	busy    atomic.Bool
}

// NewAdapter binds engine to backend. It fails with INVALID_CONFIG for an
// unrecognized backend or a negative time limit, before touching the engine.
func NewAdapter(engine Engine, backend Backend, opts Options) (*Adapter, error) {
	if !backend.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown solver backend %q", string(backend))
	}
	if engine == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no engine configured for backend %s", backend)
	}
	if opts.TimeLimit < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "time limit must be non-negative, got %s", opts.TimeLimit)
	}
	if opts.Grace <= 0 {
		opts.Grace = max(minGrace, opts.TimeLimit/10)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Adapter{engine: engine, backend: backend, opts: opts}, nil
}

// Backend returns the backend the adapter solves with.
func (a *Adapter) Backend() Backend { return a.backend }

// Regime returns the optimality guarantee of the adapter's answers.
func (a *Adapter) Regime() Regime { return a.backend.Regime() }

// Solve hands model and guess to the engine and waits for its answer.
//
// guess may be nil; otherwise it must hold exactly model.N() points. The
// returned error is non-nil only when no solve was attempted (busy adapter,
// bad guess) or when ctx was cancelled by the caller; engine failures are
// reported through the Outcome's status.
func (a *Adapter) Solve(ctx context.Context, model *packing.Model, guess []packing.Circle) (Outcome, error) {
	if model == nil {
		return Outcome{}, errors.New(errors.ErrCodeInvalidModel, "no model to solve")
	}
	if guess != nil && len(guess) != model.N() {
		return Outcome{}, errors.New(errors.ErrCodeGeneration, "initial guess has %d points, model has %d circles", len(guess), model.N())
	}
	if !a.busy.CompareAndSwap(false, true) {
		return Outcome{}, errors.New(errors.ErrCodeBusy, "adapter for %s is already solving", a.backend)
	}
	defer a.busy.Store(false)

	out := Outcome{Backend: a.backend, Regime: a.Regime()}
	start := time.Now()

	solveCtx, cancel := a.deadline(ctx)
	defer cancel()

	session, err := a.engine.Open(solveCtx)
	if err != nil {
		out.Elapsed = time.Since(start)
		return a.failure(ctx, solveCtx, out, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			a.opts.Logger.Warn("closing solver session", "backend", a.backend, "err", cerr)
		}
	}()

	a.opts.Logger.Debug("solving", "backend", a.backend, "n", model.N(), "constraints", model.NumConstraints(), "guess", guess != nil, "time_limit", a.opts.TimeLimit)
	rep, err := session.Solve(solveCtx, Problem{
		Model:     model,
		Backend:   a.backend,
		Guess:     guess,
		TimeLimit: a.opts.TimeLimit,
	})
	out.Elapsed = time.Since(start)
	if err != nil {
		return a.failure(ctx, solveCtx, out, err)
	}

	out.Status, out.Code, out.Detail = rep.Status, rep.Code, rep.Message
	if out.Status == StatusConverged {
		out.Candidate = packing.Candidate{Centers: rep.Centers, Radius: rep.Radius}
	}
	a.opts.Logger.Debug("solver answered", "backend", a.backend, "status", out.Status, "code", rep.Code, "elapsed", out.Elapsed)
	return out, nil
}

// deadline derives the hard solve deadline from the time limit.
func (a *Adapter) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.TimeLimit <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opts.TimeLimit+a.opts.Grace)
}

// failure classifies an engine error. A caller cancellation is returned as
// an error; deadline expiry becomes a timeout; anything else is a backend
// error.
func (a *Adapter) failure(parent, solveCtx context.Context, out Outcome, err error) (Outcome, error) {
	switch {
	case parent.Err() == context.Canceled:
		return Outcome{}, parent.Err()
	case solveCtx.Err() == context.DeadlineExceeded:
		out.Status = StatusTimeout
		out.Detail = "deadline exceeded"
	default:
		out.Status = StatusBackendError
		out.Detail = err.Error()
	}
	a.opts.Logger.Debug("solver failed", "backend", a.backend, "status", out.Status, "err", err)
	return out, nil
}
