// Package pkg holds the circlepack libraries.
//
// # Overview
//
// circlepack places n equal, non-overlapping circles inside an axis-aligned
// rectangle so that their common radius is as large as possible. The problem
// is a small nonconvex NLP; circlepack builds the model, hands it to a solver
// backend through AMPL and checks every answer before reporting it.
//
// # Architecture
//
//	domain + n
//	    ↓
//	[packing] model (variables, box and no-overlap constraints)
//	    ↓
//	[packing/guess] optional starting point
//	    ↓
//	[solver] adapter → [solver/ampl] engine
//	    ↓
//	[packing] validation
//	    ↓
//	[render] SVG/PDF/PNG/DOT/JSON
//
// [pipeline] runs these stages in order for the CLI and the HTTP API, so
// both report identical results and error codes.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(ampl.New(ampl.Config{}), cache.NewNullCache(), nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Domain:  packing.DefaultDomain,
//	    N:       5,
//	    Backend: "baron",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Packing.Radius())
//
// # Main Packages
//
// [packing] - Domain, problem spec, model construction and the validator.
// A [packing.Result] can only be obtained from validation, so holding one
// means the packing satisfied every constraint within tolerance.
//
// [packing/guess] - Starting points: zero, seeded random and jittered grid.
//
// [solver] - Backend catalogue (IPOPT, BARON, LGO, LINDOGlobal, Octeract,
// Couenne), the engine/session interfaces and the adapter that enforces time
// limits and maps solver status onto outcomes.
//
// [solver/ampl] - Engine that writes AMPL run files and drives the ampl binary.
//
// [cache] - Solved-packing cache keyed by the problem inputs: file, Redis
// and null backends.
//
// [store] - Run history: JSON-lines file, MongoDB and in-memory backends.
//
// [render] - Drawings of a validated packing.
//
// [config] - TOML, YAML and JSON settings files.
//
// [api] - HTTP API over the same pipeline.
//
// [observability] - Hooks for solve, cache and API metrics, with a
// Prometheus implementation.
//
// [errors] - Coded errors shared by every layer.
//
// # Testing
//
//	go test ./...                  # All tests
//	go test ./pkg/packing/...      # Specific package
//	go test -run Example ./pkg/... # Examples only
package pkg
