// Package render exports graph snapshots as Graphviz diagrams.
//
// # Overview
//
// This package turns a [graph.Snapshot] into a picture. The layout engine
// already computed node positions, so rendering pins every node in place
// with neato's pos attribute rather than re-laying-out the graph:
//
//   - [ToDOT] generates Graphviz DOT with fixed positions
//   - [RenderSVG] rasterizes DOT to SVG via the embedded Graphviz
//   - [RenderPNG] rasterizes DOT to PNG
//
// # Basic Usage
//
//	dot := render.ToDOT(store.Snapshot(), render.Options{FlipHeight: 600})
//	svg, err := render.RenderSVG(dot)
//	png, err := render.RenderPNG(dot)
//
// FlipHeight mirrors the Y axis so exports match the live views, which
// place the origin at the top-left while Graphviz plots y upward.
//
// [graph.Snapshot]: github.com/matzehuels/skein/pkg/graph
package render
