package packing

import (
	"fmt"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// DefaultTolerance is the numeric slack ε allowed on every check.
const DefaultTolerance = 1e-6

// Violation describes the worst broken constraint of a rejected candidate.
// It is the cause of every VALIDATION_FAILED error and can be extracted
// with errors.As.
type Violation struct {
	Constraint string  // constraint name, e.g. "no_overlap[1,2]"
	Amount     float64 // how far the constraint is violated, before tolerance
}

func (v *Violation) Error() string {
	return fmt.Sprintf("constraint %s violated by %.3g", v.Constraint, v.Amount)
}

// Validate checks a solver answer against the packing invariants of spec and
// returns the immutable Result on success.
//
// The circle count is taken from spec, never from the candidate; a candidate
// with a different number of centers is rejected. Within tolerance eps the
// radius must be non-negative, every circle must lie in the domain shrunk by
// the radius, and every pair of centers must be at least two radii apart.
// Failures are VALIDATION_FAILED errors wrapping a [*Violation] for the
// constraint with the largest violation.
func Validate(spec Spec, cand Candidate, eps float64) (Result, error) {
	if err := errors.ValidateFinite("tolerance", eps); err != nil {
		return Result{}, err
	}
	if eps < 0 {
		return Result{}, errors.New(errors.ErrCodeInvalidConfig, "tolerance must be non-negative, got %g", eps)
	}
	m, err := BuildModel(spec)
	if err != nil {
		return Result{}, err
	}
	if err := m.checkShape(cand); err != nil {
		return Result{}, err
	}
	if cand.Radius < -eps {
		return Result{}, errors.Wrap(errors.ErrCodeValidation,
			&Violation{Constraint: "radius", Amount: -cand.Radius}, "negative radius %g", cand.Radius)
	}

	if worst, ok := m.worstViolation(cand); ok && worst.Amount > eps {
		return Result{}, errors.Wrap(errors.ErrCodeValidation, &worst,
			"packing breaks %s by %.3g (tolerance %g)", worst.Constraint, worst.Amount, eps)
	}

	return newResult(spec, cand, eps), nil
}

// worstViolation returns the constraint with the largest violation amount.
// ok is false for models without constraints, which cannot happen for n >= 1.
func (m *Model) worstViolation(cand Candidate) (Violation, bool) {
	var (
		worst Violation
		ok    bool
	)
	for _, c := range m.constraints {
		v := c.Check(cand)
		if !ok || v.Amount > worst.Amount {
			worst, ok = v, true
		}
	}
	return worst, ok
}

// Violations lists every constraint cand breaks by more than eps, in model
// order. It is a diagnostic companion to [Validate].
func Violations(spec Spec, cand Candidate, eps float64) ([]Violation, error) {
	m, err := BuildModel(spec)
	if err != nil {
		return nil, err
	}
	if err := m.checkShape(cand); err != nil {
		return nil, err
	}
	var out []Violation
	for _, c := range m.constraints {
		if v := c.Check(cand); v.Amount > eps {
			out = append(out, v)
		}
	}
	return out, nil
}
