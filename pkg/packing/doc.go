// Package packing models the equal-circle packing problem in a rectangle.
//
// # Overview
//
// Given an axis-aligned [Domain] and a circle count n, the goal is the largest
// common radius r such that n circles of radius r fit inside the domain
// without overlapping. The problem is a nonconvex nonlinear program (NLP):
// maximize r over the centers (x_i, y_i) and r, subject to
//
//	min + r <= x_i <= max - r          (box containment, per circle and axis)
//	(x_i-x_j)² + (y_i-y_j)² >= (2r)²   (non-overlap, per pair i < j)
//
// This package owns the problem description and the checks on answers. It
// does not solve anything; see the solver package for the engine seam.
//
// # Basic Usage
//
// Build an immutable [Spec] with [NewSpec], derive the NLP description with
// [BuildModel], hand the model to a solver, then turn the solver's [Candidate]
// into a [Result] with [Validate]:
//
//	spec, err := packing.NewSpec(packing.Domain{XMax: 10, YMax: 10}, 5)
//	model, err := packing.BuildModel(spec)
//	// ... solve ...
//	res, err := packing.Validate(spec, candidate, packing.DefaultTolerance)
//
// # Constraints
//
// Constraints are generated from n, never enumerated by hand: 2n box range
// constraints (one per circle and axis, each with a lower and an upper side)
// and n(n-1)/2 pairwise constraints. Every [Constraint] has a stable name such
// as "box_x[3]" or "no_overlap[1,2]" (1-based, matching the solver's
// indexing) and measures its own violation on a candidate, which is how
// [Validate] reports the offending constraint.
//
// # Immutability
//
// [Spec] and [Result] keep their fields unexported and hand out copies, so
// once built they can be shared across goroutines without synchronization.
// A Result can only be obtained from [Validate] or by decoding JSON, which
// validates again.
package packing
