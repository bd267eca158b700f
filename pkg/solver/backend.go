package solver

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// Backend identifies a solving engine from a fixed, closed set.
type Backend string

const (
	Ipopt       Backend = "ipopt"
	Baron       Backend = "baron"
	LGO         Backend = "lgo"
	LindoGlobal Backend = "lindoglobal"
	Octeract    Backend = "octeract"
	Couenne     Backend = "couenne"
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = Octeract

// Backends lists every recognized backend in display order.
var Backends = []Backend{Ipopt, Baron, LGO, LindoGlobal, Octeract, Couenne}

// Regime tells which optimality guarantee a backend's answer carries.
type Regime int

const (
	// RegimeLocal answers are locally optimal only.
	RegimeLocal Regime = iota
	// RegimeGlobal answers come from a global search that attempts to
	// certify the best radius.
	RegimeGlobal
)

func (r Regime) String() string {
	if r == RegimeGlobal {
		return "global"
	}
	return "local"
}

// MarshalText encodes the regime as "local" or "global".
func (r Regime) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// backendInfo is the static description of one backend.
type backendInfo struct {
	regime      Regime
	description string
	// timeOption formats the engine-side wall-clock limit in seconds.
	timeOption func(seconds int) string
}

var backendTable = map[Backend]backendInfo{
	Ipopt: {
		regime:      RegimeLocal,
		description: "interior-point local NLP solver",
		timeOption:  func(s int) string { return fmt.Sprintf("max_wall_time=%d", s) },
	},
	Baron: {
		regime:      RegimeGlobal,
		description: "branch-and-reduce global solver",
		timeOption:  func(s int) string { return fmt.Sprintf("maxtime=%d", s) },
	},
	LGO: {
		regime:      RegimeGlobal,
		description: "global-local heuristic search",
		timeOption:  func(s int) string { return fmt.Sprintf("timelim=%d", s) },
	},
	LindoGlobal: {
		regime:      RegimeGlobal,
		description: "branch-and-bound global solver",
		timeOption:  func(s int) string { return fmt.Sprintf("maxtime=%d", s) },
	},
	Octeract: {
		regime:      RegimeGlobal,
		description: "deterministic global MINLP solver",
		timeOption:  func(s int) string { return fmt.Sprintf("MAX_SOLVER_TIME=%d", s) },
	},
	Couenne: {
		regime:      RegimeGlobal,
		description: "spatial branch-and-bound global solver",
		timeOption:  func(s int) string { return fmt.Sprintf("time_limit=%d", s) },
	},
}

// ParseBackend normalizes name and checks it against [Backends].
// Unknown names fail with INVALID_CONFIG; no engine is touched.
func ParseBackend(name string) (Backend, error) {
	norm, err := errors.NormalizeName("backend", name)
	if err != nil {
		return "", err
	}
	b := Backend(norm)
	if _, ok := backendTable[b]; !ok {
		return "", errors.New(errors.ErrCodeInvalidConfig, "unknown solver backend %q (must be one of: %s)", name, backendList())
	}
	return b, nil
}

// Valid reports whether b is a recognized backend.
func (b Backend) Valid() bool {
	_, ok := backendTable[b]
	return ok
}

// Regime returns the optimality guarantee of b.
func (b Backend) Regime() Regime { return backendTable[b].regime }

// Description returns a short human-readable summary of b.
func (b Backend) Description() string { return backendTable[b].description }

// OptionsName is the AMPL option that carries solver directives, e.g.
// "baron_options".
func (b Backend) OptionsName() string { return string(b) + "_options" }

// TimeLimitDirective returns the solver directive enforcing d on the engine
// side, rounded up to whole seconds. It returns "" for d <= 0.
func (b Backend) TimeLimitDirective(d time.Duration) string {
	info, ok := backendTable[b]
	if !ok || d <= 0 {
		return ""
	}
	secs := int((d + time.Second - 1) / time.Second)
	return info.timeOption(secs)
}

func backendList() string {
	names := make([]string, len(Backends))
	for i, b := range Backends {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
