package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/circlepack/pkg/packing"
	"github.com/matzehuels/circlepack/pkg/pipeline"
	"github.com/matzehuels/circlepack/pkg/render"
)

// outputOpts are the artifact flags shared by solve, sweep and render.
type outputOpts struct {
	output  string
	formats []string
	width   float64
	labels  bool
}

// requested reports whether any artifact should be written.
func (o *outputOpts) requested() bool {
	return o.output != "" || len(o.formats) > 0
}

// basePath strips a known format extension from output, or falls back to
// def when output is empty.
func basePath(output, def string) string {
	if output == "" {
		return def
	}
	if _, err := render.ParseFormat(strings.TrimPrefix(filepath.Ext(output), ".")); err == nil {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

// formatsFor resolves --format, inferring it from the --output extension
// when unset.
func (o *outputOpts) formatsFor() ([]render.Format, error) {
	if len(o.formats) == 0 && o.output != "" {
		if f, err := render.ParseFormat(strings.TrimPrefix(filepath.Ext(o.output), ".")); err == nil {
			return []render.Format{f}, nil
		}
	}
	return pipeline.ParseFormats(o.formats)
}

// defaultBase names artifacts after the problem, e.g. "packing-n5".
func defaultBase(res packing.Result) string {
	return fmt.Sprintf("packing-n%d", res.N())
}

// writeArtifacts renders res in every requested format and returns the
// written paths. A single format goes to --output verbatim.
func writeArtifacts(ctx context.Context, res packing.Result, o *outputOpts) ([]string, error) {
	formats, err := o.formatsFor()
	if err != nil {
		return nil, err
	}
	artifacts, err := pipeline.Render(ctx, res, formats, render.Options{Width: o.width, Labels: o.labels})
	if err != nil {
		return nil, err
	}

	base := basePath(o.output, defaultBase(res))
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f.Ext()
		switch {
		case len(formats) == 1 && o.output != "":
			path = o.output
		case f == render.FormatGraphviz:
			// Shares the .svg extension with the native renderer.
			path = base + ".neato.svg"
		}
		if err := writeFile(path, artifacts[f]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
