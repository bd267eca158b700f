// Package guess generates starting points for the packing solver.
//
// A nonconvex solver converges to whichever local optimum is nearest its
// starting point, so the initial center placement matters. Three strategies
// are available:
//
//   - [Zero]: every center at the origin clipped into the domain. Cheap and
//     uninformative; useful as a regression baseline.
//   - [Random]: independent uniform draws over the domain.
//   - [Grid]: n cells sampled without replacement from a ceil(sqrt(n)) square
//     grid of interior points.
//
// Random and Grid are driven by a seeded PCG source, so the same seed, circle
// count, domain and strategy always produce the same points.
package guess

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
)

// Strategy names an initial-guess strategy.
type Strategy string

const (
	Zero   Strategy = "zero"
	Random Strategy = "random"
	Grid   Strategy = "grid"
)

// Strategies lists the recognized strategies in display order.
var Strategies = []Strategy{Zero, Random, Grid}

// ParseStrategy normalizes name and checks it against [Strategies].
// Unknown names fail with INVALID_CONFIG.
func ParseStrategy(name string) (Strategy, error) {
	norm, err := errors.NormalizeName("strategy", name)
	if err != nil {
		return "", err
	}
	for _, s := range Strategies {
		if Strategy(norm) == s {
			return s, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unknown initial-guess strategy %q (must be one of: zero, random, grid)", name)
}

// Generator produces n candidate centers for a problem.
type Generator interface {
	// Generate returns exactly spec.N() points inside spec.Domain().
	// Points need not be pairwise feasible.
	Generate(spec packing.Spec) ([]packing.Circle, error)
}

// New returns the generator for strategy. seed drives the random source of
// the Random and Grid strategies and is ignored by Zero.
func New(strategy Strategy, seed uint64) (Generator, error) {
	switch strategy {
	case Zero:
		return zeroGenerator{}, nil
	case Random:
		return randomGenerator{seed: seed}, nil
	case Grid:
		return gridGenerator{seed: seed}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown initial-guess strategy %q", string(strategy))
	}
}

// newRNG returns the deterministic source used by the seeded strategies.
func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

type zeroGenerator struct{}

func (zeroGenerator) Generate(spec packing.Spec) ([]packing.Circle, error) {
	x, y := spec.Domain().Clamp(0, 0)
	pts := make([]packing.Circle, spec.N())
	for i := range pts {
		pts[i] = packing.Circle{X: x, Y: y}
	}
	return pts, nil
}

type randomGenerator struct{ seed uint64 }

func (g randomGenerator) Generate(spec packing.Spec) ([]packing.Circle, error) {
	d := spec.Domain()
	rng := newRNG(g.seed)
	pts := make([]packing.Circle, spec.N())
	for i := range pts {
		pts[i] = packing.Circle{
			X: d.XMin + rng.Float64()*d.Width(),
			Y: d.YMin + rng.Float64()*d.Height(),
		}
	}
	return pts, nil
}

type gridGenerator struct{ seed uint64 }

func (g gridGenerator) Generate(spec packing.Spec) ([]packing.Circle, error) {
	n := spec.N()
	cells, err := GridPoints(spec.Domain(), GridDim(n))
	if err != nil {
		return nil, err
	}
	if len(cells) < n {
		return nil, errors.New(errors.ErrCodeGeneration, "grid has %d points, need %d", len(cells), n)
	}

	pick := newRNG(g.seed).Perm(len(cells))[:n]
	pts := make([]packing.Circle, n)
	for i, idx := range pick {
		pts[i] = cells[idx]
	}
	return pts, nil
}

// GridDim returns ceil(sqrt(n)), the number of grid points per axis.
func GridDim(n int) int {
	if n <= 0 {
		return 0
	}
	dim := int(math.Ceil(math.Sqrt(float64(n))))
	// Guard against rounding for large perfect squares.
	for dim*dim < n {
		dim++
	}
	for dim > 1 && (dim-1)*(dim-1) >= n {
		dim--
	}
	return dim
}

// GridPoints returns the dim×dim Cartesian product of interior grid
// coordinates. Each axis is split into dim+1 equal steps and the boundary
// points are dropped, so every point lies strictly inside d. Points are
// ordered row by row (y outer, x inner).
//
// It fails with GENERATION_FAILED when dim < 1, or when the domain is too
// narrow relative to its offset for dim distinct interior coordinates to be
// representable.
func GridPoints(d packing.Domain, dim int) ([]packing.Circle, error) {
	if dim < 1 {
		return nil, errors.New(errors.ErrCodeGeneration, "grid dimension must be at least 1, got %d", dim)
	}
	xs, err := interior("x", d.XMin, d.XMax, dim)
	if err != nil {
		return nil, err
	}
	ys, err := interior("y", d.YMin, d.YMax, dim)
	if err != nil {
		return nil, err
	}

	pts := make([]packing.Circle, 0, dim*dim)
	for _, y := range ys {
		for _, x := range xs {
			pts = append(pts, packing.Circle{X: x, Y: y})
		}
	}
	return pts, nil
}

// interior returns dim evenly spaced points strictly between lo and hi.
// Rounding at large offsets can merge neighbours or land on a bound; that is
// reported rather than returned.
func interior(axis string, lo, hi float64, dim int) ([]float64, error) {
	step := (hi - lo) / float64(dim+1)
	out := make([]float64, dim)
	prev := lo
	for k := range out {
		v := lo + float64(k+1)*step
		if v <= prev || v >= hi {
			return nil, errors.New(errors.ErrCodeGeneration,
				"cannot place %d distinct interior grid points on %s axis [%g, %g]", dim, axis, lo, hi)
		}
		out[k], prev = v, v
	}
	return out, nil
}
