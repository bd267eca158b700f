package packing

import (
	"math"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// Domain is the axis-aligned rectangle the circles must fit in.
type Domain struct {
	XMin float64 `json:"x_min" toml:"x_min" yaml:"x_min"`
	XMax float64 `json:"x_max" toml:"x_max" yaml:"x_max"`
	YMin float64 `json:"y_min" toml:"y_min" yaml:"y_min"`
	YMax float64 `json:"y_max" toml:"y_max" yaml:"y_max"`
}

// DefaultDomain is the 10×10 square anchored at the origin.
var DefaultDomain = Domain{XMin: 0, XMax: 10, YMin: 0, YMax: 10}

// Validate reports a ModelError when the domain is degenerate or has
// non-finite bounds.
func (d Domain) Validate() error {
	bounds := []struct {
		name string
		v    float64
	}{{"x_min", d.XMin}, {"x_max", d.XMax}, {"y_min", d.YMin}, {"y_max", d.YMax}}
	for _, b := range bounds {
		if math.IsNaN(b.v) || math.IsInf(b.v, 0) {
			return errors.New(errors.ErrCodeInvalidModel, "domain %s must be finite, got %v", b.name, b.v)
		}
	}
	if d.XMax <= d.XMin {
		return errors.New(errors.ErrCodeInvalidModel, "degenerate domain: x_max (%g) must exceed x_min (%g)", d.XMax, d.XMin)
	}
	if d.YMax <= d.YMin {
		return errors.New(errors.ErrCodeInvalidModel, "degenerate domain: y_max (%g) must exceed y_min (%g)", d.YMax, d.YMin)
	}
	return nil
}

func (d Domain) Width() float64  { return d.XMax - d.XMin }
func (d Domain) Height() float64 { return d.YMax - d.YMin }
func (d Domain) Area() float64   { return d.Width() * d.Height() }

// Contains reports whether (x, y) lies in the closed rectangle.
func (d Domain) Contains(x, y float64) bool {
	return x >= d.XMin && x <= d.XMax && y >= d.YMin && y <= d.YMax
}

// Clamp moves (x, y) to the nearest point of the closed rectangle.
func (d Domain) Clamp(x, y float64) (float64, float64) {
	return min(max(x, d.XMin), d.XMax), min(max(y, d.YMin), d.YMax)
}

// Spec is the immutable problem statement: a domain and a circle count.
// The zero value is not usable; build one with [NewSpec].
type Spec struct {
	domain Domain
	n      int
}

// NewSpec validates the domain and circle count and returns a Spec.
// It fails with an INVALID_MODEL error for n < 1 or a degenerate domain.
func NewSpec(d Domain, n int) (Spec, error) {
	if n < 1 {
		return Spec{}, errors.New(errors.ErrCodeInvalidModel, "circle count must be at least 1, got %d", n)
	}
	if err := d.Validate(); err != nil {
		return Spec{}, err
	}
	return Spec{domain: d, n: n}, nil
}

// Domain returns the rectangle of the problem.
func (s Spec) Domain() Domain { return s.domain }

// N returns the number of circles. It is the only authoritative circle count;
// every other component re-derives n from here.
func (s Spec) N() int { return s.n }

// Circle is the center of one circle. All circles of a packing share a radius.
type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Candidate is an unvalidated packing: either an initial guess (radius zero)
// or the raw answer of a solver.
type Candidate struct {
	Centers []Circle
	Radius  float64
}

// Distance returns the Euclidean distance between two centers.
func Distance(a, b Circle) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
