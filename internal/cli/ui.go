package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/pipeline"
	"github.com/matzehuels/circlepack/pkg/solver"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError     = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, "  "+styleKey.Render(key)+" "+StyleValue.Render(value))
}

// PrintError writes err to w with its code, the way every command fails.
func PrintError(w io.Writer, err error) {
	msg := errors.UserMessage(err)
	if code := errors.GetCode(err); code != "" {
		msg = StyleDim.Render(string(code)) + " " + msg
	}
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)
}

// printResult prints the summary of a successful run.
func printResult(res *pipeline.Result) {
	p := res.Packing
	source := "solved"
	if res.CacheHit {
		source = "cached"
	}
	printSuccess("Packed %s circles, radius %s %s",
		StyleHighlight.Render(fmt.Sprint(p.N())),
		StyleHighlight.Render(fmt.Sprintf("%.9g", p.Radius())),
		StyleDim.Render("("+source+")"))

	d := p.Domain()
	printKeyValue("domain", fmt.Sprintf("[%g, %g] × [%g, %g]", d.XMin, d.XMax, d.YMin, d.YMax))
	printKeyValue("backend", fmt.Sprintf("%s (%s)", res.Backend, res.Regime))
	if res.Regime == solver.RegimeLocal {
		printDetail("local solver: the radius is locally optimal only")
	}
	if res.Strategy != "" {
		printKeyValue("guess", fmt.Sprintf("%s, seed %d", res.Strategy, res.Seed))
	}
	if b := res.Stats.RadiusBound; b > 0 {
		printKeyValue("bound", fmt.Sprintf("%.9g (%.1f%% reached)", b, 100*p.Radius()/b))
	}
	printKeyValue("density", fmt.Sprintf("%.4f", p.Density()))
	if p.N() > 1 {
		printKeyValue("min gap", fmt.Sprintf("%.3g", p.MinGap()))
	}
	printKeyValue("solve time", res.Stats.SolveTime.Round(time.Millisecond).String())
	printKeyValue("run", res.RunID)
}

// centerTable renders circle centers as a table.
func centerTable(res *pipeline.Result) string {
	rows := make([][]string, 0, res.Packing.N())
	for i, c := range res.Packing.Centers() {
		rows = append(rows, []string{fmt.Sprint(i + 1), fmt.Sprintf("%.9g", c.X), fmt.Sprintf("%.9g", c.Y)})
	}
	return newTable("#", "x", "y").Rows(rows...).Render()
}

// newTable returns a table in the CLI's border style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == -1 { // header
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
