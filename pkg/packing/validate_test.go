package packing

import (
	stderrors "errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// twoCircleOptimum is the known optimum for two circles in the 10×10 square:
// both circles touch along the diagonal.
func twoCircleOptimum() Candidate {
	r := 5 * (2 - math.Sqrt2)
	return Candidate{Centers: []Circle{{r, r}, {10 - r, 10 - r}}, Radius: r}
}

func mustSpec(t *testing.T, d Domain, n int) Spec {
	t.Helper()
	spec, err := NewSpec(d, n)
	require.NoError(t, err)
	return spec
}

func TestValidateSingleCircle(t *testing.T) {
	spec := mustSpec(t, DefaultDomain, 1)

	res, err := Validate(spec, Candidate{Centers: []Circle{{5, 5}}, Radius: 5}, DefaultTolerance)
	require.NoError(t, err)

	assert.Equal(t, 5.0, res.Radius())
	assert.Equal(t, []Circle{{5, 5}}, res.Centers())
	assert.Equal(t, 1, res.N())
	assert.Equal(t, DefaultDomain, res.Domain())
	assert.InDelta(t, math.Pi*25/100, res.Density(), 1e-12)
}

func TestValidateTwoCircles(t *testing.T) {
	spec := mustSpec(t, DefaultDomain, 2)
	res, err := Validate(spec, twoCircleOptimum(), DefaultTolerance)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.MinGap(), 1e-9)
}

func TestValidateRejects(t *testing.T) {
	spec := mustSpec(t, DefaultDomain, 2)

	tests := []struct {
		name       string
		cand       Candidate
		constraint string
	}{
		{
			name:       "overlap",
			cand:       Candidate{Centers: []Circle{{3, 5}, {6, 5}}, Radius: 2},
			constraint: "no_overlap[1,2]",
		},
		{
			name:       "outside left",
			cand:       Candidate{Centers: []Circle{{0.5, 5}, {8, 5}}, Radius: 1},
			constraint: "box_x[1].lower",
		},
		{
			name:       "outside top",
			cand:       Candidate{Centers: []Circle{{2, 2}, {8, 9.5}}, Radius: 1},
			constraint: "box_y[2].upper",
		},
		{
			name:       "negative radius",
			cand:       Candidate{Centers: []Circle{{2, 2}, {8, 8}}, Radius: -0.5},
			constraint: "radius",
		},
		{
			name:       "too few centers",
			cand:       Candidate{Centers: []Circle{{2, 2}}, Radius: 1},
			constraint: "circle_count",
		},
		{
			name:       "too many centers",
			cand:       Candidate{Centers: []Circle{{2, 2}, {5, 5}, {8, 8}}, Radius: 0.5},
			constraint: "circle_count",
		},
		{
			name:       "nan radius",
			cand:       Candidate{Centers: []Circle{{2, 2}, {8, 8}}, Radius: math.NaN()},
			constraint: "radius",
		},
		{
			name:       "infinite center",
			cand:       Candidate{Centers: []Circle{{2, 2}, {math.Inf(1), 8}}, Radius: 1},
			constraint: "center[2]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(spec, tt.cand, DefaultTolerance)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeValidation), "code = %v", errors.GetCode(err))

			var v *Violation
			require.True(t, stderrors.As(err, &v), "error should carry a *Violation")
			assert.Equal(t, tt.constraint, v.Constraint)
			assert.Greater(t, v.Amount, 0.0)
		})
	}
}

func TestValidateWithinTolerance(t *testing.T) {
	spec := mustSpec(t, DefaultDomain, 2)
	cand := twoCircleOptimum()
	cand.Radius += DefaultTolerance / 4

	_, err := Validate(spec, cand, DefaultTolerance)
	assert.NoError(t, err)

	cand.Radius += 10 * DefaultTolerance
	_, err = Validate(spec, cand, DefaultTolerance)
	assert.Error(t, err)
}

func TestValidateNegativeTolerance(t *testing.T) {
	spec := mustSpec(t, DefaultDomain, 1)
	_, err := Validate(spec, Candidate{Centers: []Circle{{5, 5}}, Radius: 5}, -1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))

	// Two coincident circles must never pass, whatever the tolerance.
	two := mustSpec(t, DefaultDomain, 2)
	overlap := Candidate{Centers: []Circle{{5, 5}, {5, 5}}, Radius: 4}
	for _, eps := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Validate(two, overlap, eps)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "eps %v", eps)
	}
}

func TestValidateDoesNotAlias(t *testing.T) {
	spec := mustSpec(t, DefaultDomain, 1)
	centers := []Circle{{5, 5}}
	res, err := Validate(spec, Candidate{Centers: centers, Radius: 5}, DefaultTolerance)
	require.NoError(t, err)

	centers[0].X = 0
	got := res.Centers()
	got[0].Y = 0

	assert.Equal(t, []Circle{{5, 5}}, res.Centers())
}

// TestValidateSoundness perturbs a feasible packing so that exactly one
// constraint is broken by more than ε and checks the validator rejects it.
func TestValidateSoundness(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7^0xdeadbeef))
	spec := mustSpec(t, DefaultDomain, 2)

	for range 200 {
		cand := twoCircleOptimum()
		excess := 10*DefaultTolerance + rng.Float64()
		switch rng.IntN(3) {
		case 0: // push circle 1 through the left wall
			cand.Centers[0].X = cand.Radius - excess
		case 1: // pull circle 2 towards circle 1 along the diagonal
			shift := excess / math.Sqrt2
			cand.Centers[1].X -= shift
			cand.Centers[1].Y -= shift
		case 2: // grow the radius
			cand.Radius += excess
		}

		_, err := Validate(spec, cand, DefaultTolerance)
		require.Error(t, err, "candidate %+v should be rejected", cand)
	}
}

func TestViolations(t *testing.T) {
	spec := mustSpec(t, DefaultDomain, 3)
	cand := Candidate{Centers: []Circle{{0, 0}, {0.5, 0}, {9, 9}}, Radius: 1}

	vs, err := Violations(spec, cand, DefaultTolerance)
	require.NoError(t, err)

	var names []string
	for _, v := range vs {
		names = append(names, v.Constraint)
	}
	assert.Equal(t, []string{"box_x[1].lower", "box_y[1].lower", "box_x[2].lower", "box_y[2].lower", "no_overlap[1,2]"}, names)
}
