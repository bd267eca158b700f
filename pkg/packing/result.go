package packing

import (
	"encoding/json"
	"math"
	"slices"
)

// Result is a validated packing. Its fields are read through accessors that
// return copies, so a Result never changes after [Validate] creates it.
type Result struct {
	centers []Circle
	radius  float64
	domain  Domain
	n       int
	// tolerance is the ε the packing was accepted with.
	tolerance float64
}

func newResult(spec Spec, cand Candidate, eps float64) Result {
	return Result{
		centers:   slices.Clone(cand.Centers),
		radius:    cand.Radius,
		domain:    spec.domain,
		n:         spec.n,
		tolerance: eps,
	}
}

// Centers returns a copy of the circle centers in solver order.
func (r Result) Centers() []Circle { return slices.Clone(r.centers) }

// Radius returns the common circle radius.
func (r Result) Radius() float64 { return r.radius }

// Domain returns the rectangle the circles were packed into.
func (r Result) Domain() Domain { return r.domain }

// N returns the circle count.
func (r Result) N() int { return r.n }

// Tolerance returns the ε the packing was validated with.
func (r Result) Tolerance() float64 { return r.tolerance }

// Spec rebuilds the problem statement of the result.
func (r Result) Spec() Spec { return Spec{domain: r.domain, n: r.n} }

// Density returns the fraction of the domain area covered by the circles.
func (r Result) Density() float64 {
	if r.n == 0 {
		return 0
	}
	return float64(r.n) * math.Pi * r.radius * r.radius / r.domain.Area()
}

// MinGap returns the smallest distance between the boundaries of two circles,
// or +Inf for a single circle. Useful as a sanity figure in reports.
func (r Result) MinGap() float64 {
	gap := math.Inf(1)
	for i := range r.centers {
		for j := i + 1; j < len(r.centers); j++ {
			gap = math.Min(gap, Distance(r.centers[i], r.centers[j])-2*r.radius)
		}
	}
	return gap
}

// resultJSON is the wire form of a Result.
type resultJSON struct {
	N       int      `json:"n"`
	Radius  float64  `json:"radius"`
	Domain  Domain   `json:"domain"`
	Centers []Circle `json:"centers"`
	Density float64  `json:"density"`
	// Tolerance is absent in files written before it was recorded.
	Tolerance float64 `json:"tolerance,omitempty"`
}

// MarshalJSON encodes the result with its derived density.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		N:         r.n,
		Radius:    r.radius,
		Domain:    r.domain,
		Centers:   r.centers,
		Density:   r.Density(),
		Tolerance: r.tolerance,
	})
}

// UnmarshalJSON decodes a result and validates it again with the tolerance it
// was accepted with ([DefaultTolerance] when none is recorded), so a decoded
// Result upholds the same invariants as one produced by [Validate]. The
// stored density is ignored.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	spec, err := NewSpec(raw.Domain, raw.N)
	if err != nil {
		return err
	}
	eps := raw.Tolerance
	if eps == 0 {
		eps = DefaultTolerance
	}
	res, err := Validate(spec, Candidate{Centers: raw.Centers, Radius: raw.Radius}, eps)
	if err != nil {
		return err
	}
	*r = res
	return nil
}
