package cli

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitNoPacking = 2
	ExitInterrupt = 130
)

// ExitCode maps a command error to the process exit status: 2 when the
// solver reported the problem infeasible or ran out of time, 130 when the
// user interrupted, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupt
	case errors.IsSolverStatus(err):
		return ExitNoPacking
	default:
		return ExitFailure
	}
}
