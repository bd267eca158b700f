package render

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/circlepack/pkg/packing"
)

// Format names an output encoding.
type Format string

const (
	FormatSVG Format = "svg"
	// FormatGraphviz is SVG produced by Graphviz from the DOT description.
	FormatGraphviz Format = "graphviz"
	FormatDOT      Format = "dot"
	FormatPNG      Format = "png"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatGraphviz, FormatDOT, FormatPNG, FormatPDF, FormatJSON}

// ParseFormat checks name against [Formats].
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format: %q (must be one of: svg, graphviz, dot, png, pdf, json)", name)
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatGraphviz:
		return "svg"
	case FormatDOT:
		return "gv"
	default:
		return string(f)
	}
}

// Render encodes res in format.
func Render(ctx context.Context, res packing.Result, format Format, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	switch format {
	case FormatSVG:
		return SVG(res, opts), nil
	case FormatGraphviz:
		return RenderDOT(ctx, ToDOT(res, opts))
	case FormatDOT:
		return []byte(ToDOT(res, opts)), nil
	case FormatPNG:
		return ToPNG(ctx, SVG(res, opts), opts.Scale)
	case FormatPDF:
		return ToPDF(ctx, SVG(res, opts))
	case FormatJSON:
		return json.MarshalIndent(res, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
