package ampl

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
	"github.com/matzehuels/circlepack/pkg/solver"
)

// marker prefixes every report line the generated script prints, so solver
// banners on the same stdout are skipped by the parser.
const marker = "@@"

// Script renders the AMPL run file for p. solverDir, when non-empty, is the
// directory holding the solver executables; otherwise AMPL resolves the
// backend name on its own search path.
//
// Every model constraint becomes explicit "subject to" lines, one per side
// for box constraints, so the file mirrors [packing.Model] exactly.
func Script(p solver.Problem, solverDir string) ([]byte, error) {
	if p.Model == nil {
		return nil, errors.New(errors.ErrCodeInvalidModel, "no model to translate")
	}
	if !p.Backend.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown solver backend %q", string(p.Backend))
	}
	n := p.Model.N()
	if p.Guess != nil && len(p.Guess) != n {
		return nil, errors.New(errors.ErrCodeGeneration, "initial guess has %d points, model has %d circles", len(p.Guess), n)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "param n integer := %d;\n", n)
	b.WriteString("var x {1..n};\n")
	b.WriteString("var y {1..n};\n")
	b.WriteString("var r >= 0;\n\n")
	b.WriteString("maximize Radius: r;\n\n")

	for _, c := range p.Model.Constraints() {
		writeConstraint(&b, c)
	}

	if p.Guess != nil {
		b.WriteByte('\n')
		for i, g := range p.Guess {
			fmt.Fprintf(&b, "let x[%d] := %s;\n", i+1, num(g.X))
			fmt.Fprintf(&b, "let y[%d] := %s;\n", i+1, num(g.Y))
		}
	}

	b.WriteByte('\n')
	fmt.Fprintf(&b, "option solver %s;\n", quote(solverCommand(p.Backend, solverDir)))
	if d := p.Backend.TimeLimitDirective(p.TimeLimit); d != "" {
		fmt.Fprintf(&b, "option %s %s;\n", p.Backend.OptionsName(), quote(d))
	}
	b.WriteString("solve;\n\n")

	fmt.Fprintf(&b, "printf \"%s result %%d %%s\\n\", solve_result_num, solve_result;\n", marker)
	fmt.Fprintf(&b, "printf \"%s radius %%.17g\\n\", r;\n", marker)
	fmt.Fprintf(&b, "printf {i in 1..n} \"%s center %%d %%.17g %%.17g\\n\", i, x[i], y[i];\n", marker)
	fmt.Fprintf(&b, "printf \"%s message %%s\\n\", solve_message;\n", marker)
	return b.Bytes(), nil
}

func writeConstraint(b *bytes.Buffer, c packing.Constraint) {
	i := c.I + 1
	switch c.Kind {
	case packing.KindBoxX, packing.KindBoxY:
		v := "x"
		if c.Kind == packing.KindBoxY {
			v = "y"
		}
		fmt.Fprintf(b, "subject to %s_%d_lo: %s + r <= %s[%d];\n", c.Kind, i, num(c.Lo), v, i)
		fmt.Fprintf(b, "subject to %s_%d_hi: %s[%d] <= %s - r;\n", c.Kind, i, v, i, num(c.Hi))
	case packing.KindNoOverlap:
		j := c.J + 1
		fmt.Fprintf(b, "subject to %s_%d_%d: (x[%d] - x[%d])^2 + (y[%d] - y[%d])^2 >= (2 * r)^2;\n",
			c.Kind, i, j, i, j, i, j)
	}
}

func solverCommand(backend solver.Backend, dir string) string {
	if dir == "" {
		return string(backend)
	}
	return filepath.Join(dir, string(backend))
}

// num prints v with the shortest exact representation, parenthesized when
// negative so it composes inside expressions.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}

func quote(s string) string {
	return "'" + s + "'"
}
