package packing

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// ConstraintKind distinguishes the three constraint families of the model.
type ConstraintKind int

const (
	// KindBoxX keeps circle I inside the domain along the x axis.
	KindBoxX ConstraintKind = iota
	// KindBoxY keeps circle I inside the domain along the y axis.
	KindBoxY
	// KindNoOverlap keeps circles I and J at least 2r apart.
	KindNoOverlap
)

func (k ConstraintKind) String() string {
	switch k {
	case KindBoxX:
		return "box_x"
	case KindBoxY:
		return "box_y"
	case KindNoOverlap:
		return "no_overlap"
	default:
		return fmt.Sprintf("ConstraintKind(%d)", int(k))
	}
}

// Constraint is one constraint of the packing NLP.
//
// Box constraints are range constraints Lo + r <= v_I <= Hi - r on a single
// coordinate. Non-overlap constraints relate circles I < J. Indices are
// 0-based; names use 1-based indices to match solver output.
type Constraint struct {
	Kind ConstraintKind
	I, J int
	// Lo and Hi are the domain bounds of the constrained axis (box kinds only).
	Lo, Hi float64
}

// Name returns a stable identifier such as "box_x[3]" or "no_overlap[1,2]".
func (c Constraint) Name() string {
	if c.Kind == KindNoOverlap {
		return fmt.Sprintf("%s[%d,%d]", c.Kind, c.I+1, c.J+1)
	}
	return fmt.Sprintf("%s[%d]", c.Kind, c.I+1)
}

// Check measures how far cand violates the constraint. A non-positive
// Amount means the constraint holds.
func (c Constraint) Check(cand Candidate) Violation {
	r := cand.Radius
	switch c.Kind {
	case KindBoxX, KindBoxY:
		v := cand.Centers[c.I].X
		if c.Kind == KindBoxY {
			v = cand.Centers[c.I].Y
		}
		lower := c.Lo + r - v
		upper := v - (c.Hi - r)
		if lower >= upper {
			return Violation{Constraint: c.Name() + ".lower", Amount: lower}
		}
		return Violation{Constraint: c.Name() + ".upper", Amount: upper}
	default:
		d := Distance(cand.Centers[c.I], cand.Centers[c.J])
		return Violation{Constraint: c.Name(), Amount: 2*r - d}
	}
}

// Model is the variable, constraint and objective description of the
// packing NLP for one Spec. It is immutable once built.
type Model struct {
	spec        Spec
	constraints []Constraint
}

// BuildModel derives the NLP for spec. Variables are x_i, y_i for each circle
// and the shared radius r >= 0; the objective is to maximize r.
//
// It fails with INVALID_MODEL when the spec has n < 1 or a degenerate domain,
// which can only happen for a zero Spec not obtained from [NewSpec].
func BuildModel(spec Spec) (*Model, error) {
	if _, err := NewSpec(spec.domain, spec.n); err != nil {
		return nil, err
	}

	n, d := spec.n, spec.domain
	cons := make([]Constraint, 0, BoxConstraintCount(n)+PairConstraintCount(n))
	for i := range n {
		cons = append(cons,
			Constraint{Kind: KindBoxX, I: i, Lo: d.XMin, Hi: d.XMax},
			Constraint{Kind: KindBoxY, I: i, Lo: d.YMin, Hi: d.YMax},
		)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			cons = append(cons, Constraint{Kind: KindNoOverlap, I: i, J: j})
		}
	}
	return &Model{spec: spec, constraints: cons}, nil
}

// BoxConstraintCount is the number of box range constraints for n circles.
func BoxConstraintCount(n int) int { return 2 * n }

// PairConstraintCount is the number of non-overlap constraints for n circles.
func PairConstraintCount(n int) int { return n * (n - 1) / 2 }

// Spec returns the problem the model was built from.
func (m *Model) Spec() Spec { return m.spec }

// N returns the circle count of the underlying spec.
func (m *Model) N() int { return m.spec.n }

// NumVariables returns 2n+1: two coordinates per circle plus the radius.
func (m *Model) NumVariables() int { return 2*m.spec.n + 1 }

// NumConstraints returns 2n + n(n-1)/2.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Constraints returns a copy of all constraints, box constraints first
// (circle by circle, x before y), then pairs in lexicographic (i, j) order.
func (m *Model) Constraints() []Constraint { return slices.Clone(m.constraints) }

// UpperBound returns a radius no feasible packing can exceed: half the
// shorter side of the domain.
func (m *Model) UpperBound() float64 {
	return math.Min(m.spec.domain.Width(), m.spec.domain.Height()) / 2
}

// checkShape verifies cand has exactly n finite centers and a finite radius.
func (m *Model) checkShape(cand Candidate) error {
	if len(cand.Centers) != m.spec.n {
		return errors.Wrap(errors.ErrCodeValidation,
			&Violation{Constraint: "circle_count", Amount: math.Abs(float64(len(cand.Centers) - m.spec.n))},
			"candidate has %d centers, problem has %d circles", len(cand.Centers), m.spec.n)
	}
	if math.IsNaN(cand.Radius) || math.IsInf(cand.Radius, 0) {
		return errors.Wrap(errors.ErrCodeValidation,
			&Violation{Constraint: "radius", Amount: math.Inf(1)}, "radius is not finite: %v", cand.Radius)
	}
	for i, c := range cand.Centers {
		if math.IsNaN(c.X) || math.IsInf(c.X, 0) || math.IsNaN(c.Y) || math.IsInf(c.Y, 0) {
			return errors.Wrap(errors.ErrCodeValidation,
				&Violation{Constraint: fmt.Sprintf("center[%d]", i+1), Amount: math.Inf(1)},
				"center %d is not finite: (%v, %v)", i+1, c.X, c.Y)
		}
	}
	return nil
}
