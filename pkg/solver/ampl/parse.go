package ampl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/circlepack/pkg/packing"
	"github.com/matzehuels/circlepack/pkg/solver"
)

// StatusFromCode maps an AMPL solve_result_num onto the adapter statuses.
//
//	  0- 99 solved         converged
//	100-199 solved?        converged, left to the validator
//	200-299 infeasible     infeasible
//	300-399 unbounded      backend error
//	400-499 limit          timeout
//	500-599 failure        backend error
func StatusFromCode(code int) solver.Status {
	switch {
	case code < 0:
		return solver.StatusBackendError
	case code < 200:
		return solver.StatusConverged
	case code < 300:
		return solver.StatusInfeasible
	case code < 400:
		return solver.StatusBackendError
	case code < 500:
		return solver.StatusTimeout
	default:
		return solver.StatusBackendError
	}
}

// parseReport reads the marker lines printed by [Script]. Lines without the
// marker are solver chatter and ignored. A converged report must carry the
// radius and exactly one center for each of the n circles.
func parseReport(r io.Reader, n int) (solver.Report, error) {
	var (
		rep       solver.Report
		haveCode  bool
		haveR     bool
		centers   = make([]packing.Circle, n)
		seen      = make([]bool, n)
		numCenter int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || fields[0] != marker {
			continue
		}
		switch fields[1] {
		case "result":
			if len(fields) < 3 {
				return rep, fmt.Errorf("line %d: result without code", line)
			}
			code, err := strconv.Atoi(fields[2])
			if err != nil {
				return rep, fmt.Errorf("line %d: bad result code %q", line, fields[2])
			}
			rep.Code, haveCode = code, true
			rep.Status = StatusFromCode(code)
			if len(fields) > 3 {
				rep.Message = fields[3]
			}
		case "radius":
			if len(fields) != 3 {
				return rep, fmt.Errorf("line %d: malformed radius", line)
			}
			v, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return rep, fmt.Errorf("line %d: bad radius %q", line, fields[2])
			}
			rep.Radius, haveR = v, true
		case "center":
			if len(fields) != 5 {
				return rep, fmt.Errorf("line %d: malformed center", line)
			}
			idx, err := strconv.Atoi(fields[2])
			if err != nil || idx < 1 || idx > n {
				return rep, fmt.Errorf("line %d: center index %q out of range 1..%d", line, fields[2], n)
			}
			if seen[idx-1] {
				return rep, fmt.Errorf("line %d: center %d reported twice", line, idx)
			}
			x, errX := strconv.ParseFloat(fields[3], 64)
			y, errY := strconv.ParseFloat(fields[4], 64)
			if errX != nil || errY != nil {
				return rep, fmt.Errorf("line %d: bad coordinates for center %d", line, idx)
			}
			centers[idx-1] = packing.Circle{X: x, Y: y}
			seen[idx-1] = true
			numCenter++
		case "message":
			if msg := strings.Join(fields[2:], " "); msg != "" {
				rep.Message = msg
			}
		}
	}
	if err := sc.Err(); err != nil {
		return rep, fmt.Errorf("read report: %w", err)
	}

	if !haveCode {
		return rep, fmt.Errorf("no result code in ampl output")
	}
	if rep.Status != solver.StatusConverged {
		return rep, nil
	}
	if !haveR {
		return rep, fmt.Errorf("converged report has no radius")
	}
	if numCenter != n {
		return rep, fmt.Errorf("converged report has %d of %d centers", numCenter, n)
	}
	rep.Centers = centers
	return rep, nil
}
