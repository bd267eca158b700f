package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/circlepack/pkg/packing"
)

// pointsPerInch is Graphviz's unit for node sizes versus positions.
const pointsPerInch = 72.0

// ToDOT describes res as an undirected Graphviz graph. Circles are
// fixed-size nodes pinned at their centers (pos="x,y!"), and the domain is a
// pinned box node behind them. Coordinates are in points, scaled so the
// domain is opts.Width wide.
func ToDOT(res packing.Result, opts Options) string {
	opts = opts.withDefaults()
	d := res.Domain()
	k := opts.Width / d.Width()

	var buf bytes.Buffer
	buf.WriteString("graph packing {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=nodesfirst;\n")
	fmt.Fprintf(&buf, "  node [shape=circle, fixedsize=true, style=filled, fillcolor=%q, color=%q, fontsize=10];\n\n",
		fillColor, strokeColor)

	fmt.Fprintf(&buf, "  domain [shape=box, label=\"\", style=dashed, color=%q, width=%.4f, height=%.4f, pos=\"%.2f,%.2f!\"];\n",
		domainColor, d.Width()*k/pointsPerInch, d.Height()*k/pointsPerInch,
		(d.XMin+d.Width()/2)*k, (d.YMin+d.Height()/2)*k)

	diam := 2 * res.Radius() * k / pointsPerInch
	for i, c := range res.Centers() {
		label := ""
		if opts.Labels {
			label = strconv.Itoa(i + 1)
		}
		fmt.Fprintf(&buf, "  c%d [label=%q, width=%.4f, height=%.4f, pos=\"%.2f,%.2f!\"];\n",
			i+1, label, diam, diam, c.X*k, c.Y*k)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOT lays out a DOT graph with neato and returns SVG.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one so the SVG scales like the native drawing.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
