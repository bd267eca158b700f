package solver

import (
	"time"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
)

// Status is the kind of answer an engine gave.
type Status int

const (
	// StatusConverged means the engine returned a candidate packing.
	StatusConverged Status = iota
	// StatusInfeasible means the engine proved or suspected infeasibility.
	StatusInfeasible
	// StatusTimeout means the wall-clock budget ran out, either engine-side
	// or through the adapter's hard deadline.
	StatusTimeout
	// StatusBackendError covers every other engine failure.
	StatusBackendError
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimeout:
		return "timeout"
	default:
		return "backend_error"
	}
}

// Outcome is the adapter's uniform answer for one solve call.
type Outcome struct {
	Status Status
	// Candidate holds the raw packing when Status is StatusConverged.
	Candidate packing.Candidate
	// Detail carries the engine's message for non-converged statuses.
	Detail string
	// Code is the raw result code reported by the engine, if any.
	Code int

	Backend Backend
	Regime  Regime
	Elapsed time.Duration
}

// Converged reports whether the outcome carries a candidate packing.
func (o Outcome) Converged() bool { return o.Status == StatusConverged }

// Err converts a non-converged outcome into the matching structured error:
// INFEASIBLE, TIMEOUT or BACKEND_ERROR. It returns nil for converged outcomes.
func (o Outcome) Err() error {
	switch o.Status {
	case StatusConverged:
		return nil
	case StatusInfeasible:
		return errors.New(errors.ErrCodeInfeasible, "%s reported the problem infeasible: %s", o.Backend, o.Detail)
	case StatusTimeout:
		return errors.New(errors.ErrCodeTimeout, "%s hit the time limit after %s: %s", o.Backend, o.Elapsed.Round(time.Millisecond), o.Detail)
	default:
		return errors.New(errors.ErrCodeBackend, "%s failed: %s", o.Backend, o.Detail)
	}
}
