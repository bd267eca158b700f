package solver

import (
	"context"
	"time"

	"github.com/matzehuels/circlepack/pkg/packing"
)

// Engine is the seam to an external NLP solving engine. Implementations
// translate a [Problem] into whatever the engine consumes; the adapter never
// looks inside.
type Engine interface {
	// Open acquires whatever process, session or scratch space the engine
	// needs for one solve. The adapter opens a session right before solving
	// and closes it on every exit path.
	Open(ctx context.Context) (Session, error)
}

// Session is one scoped engine handle.
type Session interface {
	// Solve runs the engine and blocks until it answers or ctx is done.
	Solve(ctx context.Context, p Problem) (Report, error)
	// Close releases the session's resources. It must be safe to call once
	// after any Solve result, including errors.
	Close() error
}

// Problem is the engine-independent description handed to a session.
type Problem struct {
	Model   *packing.Model
	Backend Backend
	// Guess seeds the engine's starting point; nil leaves the engine's own
	// default in place.
	Guess []packing.Circle
	// TimeLimit is the engine-side wall-clock budget; zero means none.
	TimeLimit time.Duration
}

// Report is an engine's raw answer. Engines translate their native result
// codes into Status; the adapter adds deadline handling on top.
type Report struct {
	Status  Status
	Code    int
	Message string
	Radius  float64
	Centers []packing.Circle
}

// EngineFunc adapts a plain function to [Engine]. Each Open returns a
// session that calls the function once per Solve and has nothing to close.
type EngineFunc func(ctx context.Context, p Problem) (Report, error)

// Open implements Engine.
func (f EngineFunc) Open(context.Context) (Session, error) { return funcSession(f), nil }

type funcSession EngineFunc

func (s funcSession) Solve(ctx context.Context, p Problem) (Report, error) { return s(ctx, p) }
func (funcSession) Close() error                                           { return nil }
