// Package render draws computed board layouts.
//
// # Outputs
//
//   - [SVG]: the board as a standalone SVG document with a sprint header,
//     column dividers, one block per task, and today and release markers
//   - [JSON]: the layout as stable, indented JSON
//   - [OverlapDOT]: the interval overlap graph as Graphviz DOT, one cluster
//     per row, for debugging packings; [RenderDOT] turns it into SVG with
//     go-graphviz
//
// [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert tool.
//
//	l := board.Build(file, board.BuildOptions{})
//	svg := render.SVG(l, render.WithWidth(1600), render.WithLegend())
//	png, err := render.ToPNG(ctx, svg, 2.0)
package render
