package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/circlepack/pkg/packing"
)

const (
	// DefaultWidth is the drawing width in pixels.
	DefaultWidth = 600.0
	padding      = 20.0

	fillColor   = "#cfe3ff"
	strokeColor = "#1f5fbf"
	domainColor = "#444444"
)

// Options configures drawing.
type Options struct {
	// Width of the domain in pixels; the height follows the aspect ratio.
	Width float64
	// Labels prints each circle's 1-based index at its center.
	Labels bool
	// Scale is the PNG resolution multiplier.
	Scale float64
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
	return o
}

// frame maps domain coordinates to SVG pixels, flipping the y axis.
type frame struct {
	d     packing.Domain
	scale float64
}

func newFrame(d packing.Domain, width float64) frame {
	return frame{d: d, scale: width / d.Width()}
}

func (f frame) x(v float64) float64    { return padding + (v-f.d.XMin)*f.scale }
func (f frame) y(v float64) float64    { return padding + (f.d.YMax-v)*f.scale }
func (f frame) size(v float64) float64 { return v * f.scale }

// SVG draws res as a standalone SVG document.
func SVG(res packing.Result, opts Options) []byte {
	opts = opts.withDefaults()
	d := res.Domain()
	f := newFrame(d, opts.Width)
	w := f.size(d.Width()) + 2*padding
	h := f.size(d.Height()) + 2*padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, "  <title>%d circles, r=%.6g, density %.4f</title>\n", res.N(), res.Radius(), res.Density())
	fmt.Fprintf(&buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
		f.x(d.XMin), f.y(d.YMax), f.size(d.Width()), f.size(d.Height()), domainColor)

	r := f.size(res.Radius())
	for i, c := range res.Centers() {
		cx, cy := f.x(c.X), f.y(c.Y)
		fmt.Fprintf(&buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="0.6" stroke="%s" stroke-width="1.5"/>`+"\n",
			cx, cy, r, fillColor, strokeColor)
		fmt.Fprintf(&buf, `  <circle cx="%.2f" cy="%.2f" r="2" fill="%s"/>`+"\n", cx, cy, strokeColor)
		if opts.Labels {
			fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="12" text-anchor="middle" dy="-6">%d</text>`+"\n",
				cx, cy, i+1)
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
