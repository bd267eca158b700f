// Package render draws validated packings.
//
// Three drawing paths exist:
//
//   - [SVG] writes a self-contained SVG directly: the domain rectangle, each
//     circle, and optionally its index label.
//   - [ToDOT] describes the packing as a Graphviz graph with every circle
//     pinned at its center; [RenderDOT] lays it out with neato through
//     go-graphviz. Useful when the output feeds other Graphviz tooling.
//   - [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert
//     tool (from librsvg).
//
// [Render] dispatches on a [Format] name and is what the CLI and the API
// call:
//
//	svg, err := render.Render(ctx, res, render.FormatSVG, render.Options{})
//	png, err := render.Render(ctx, res, render.FormatPNG, render.Options{Scale: 2})
//
// Only [packing.Result] values are accepted, so nothing unvalidated is ever
// drawn.
package render
