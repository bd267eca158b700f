package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/circlepack/pkg/packing"
	"github.com/matzehuels/circlepack/pkg/render"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = render.FormatSVG

// ParseFormats validates format names, defaulting to SVG.
func ParseFormats(names []string) ([]render.Format, error) {
	if len(names) == 0 {
		return []render.Format{DefaultFormat}, nil
	}
	out := make([]render.Format, 0, len(names))
	for _, n := range names {
		f, err := render.ParseFormat(n)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Render generates artifacts for a validated packing, keyed by format.
func Render(ctx context.Context, res packing.Result, formats []render.Format, opts render.Options) (map[render.Format][]byte, error) {
	artifacts := make(map[render.Format][]byte, len(formats))
	for _, f := range formats {
		data, err := render.Render(ctx, res, f, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		artifacts[f] = data
	}
	return artifacts, nil
}
