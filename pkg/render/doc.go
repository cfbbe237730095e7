// Package render draws finished layouts.
//
// # Overview
//
// Layouts are converted to Graphviz DOT with every node pinned at its
// computed position, then drawn in-process by the neato engine through
// [github.com/goccy/go-graphviz]. Neato keeps pinned positions, so the
// picture shows exactly what the layout engine produced.
//
//	dot := render.ToDOT(doc, render.Options{Directed: true})
//	svg, err := render.RenderSVG(dot)
//	png, err := render.RenderPNG(dot)
//
// # Coordinates
//
// Layout coordinates are treated as points (1/72 inch) with y growing
// downwards; DOT output flips the y axis so the drawing is not mirrored.
// Curved edges are drawn as polylines through invisible point nodes placed
// at their control points.
//
// # PDF
//
// [ToPDF] converts SVG output with the external rsvg-convert tool (librsvg).
package render
