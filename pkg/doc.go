// Package pkg provides the libraries behind impred, a force-directed layout
// improver that never changes the crossings of a drawing.
//
// # Overview
//
// impred takes a graph that already has a layout, with node positions and
// optional edge control points, and moves it toward a nicer drawing while
// keeping its topology: no edge ever passes over a node or another edge
// it did not already cross. The pkg directory is organized as follows:
//
//  1. [graph], [geom], [locator] - Data model, planar geometry and spatial index
//  2. [bends] - Bend-explicit mirror of curved edges
//  3. [impred] - The iterative engine and its force, constraint, pre-movement
//     and post-processing terms
//  4. [config], [io] - TOML engine configuration and JSON layout documents
//  5. [pipeline], [cache], [render], [quality] - Orchestration (import → layout → render)
//  6. [server], [store], [observability] - HTTP service, run persistence and metrics
//
// # Architecture
//
//	JSON layout document
//	         ↓
//	    [io] package (decode into a graph)
//	         ↓
//	    [bends] package (mirror control points as bend nodes)
//	         ↓
//	    [impred] package (iterate forces under movement caps)
//	         ↓
//	    [render] package (DOT, SVG, PNG, PDF)
//
// # Quick Start
//
//	doc, _ := io.ImportJSON("drawing.json")
//	opts, _ := config.Default().Build(doc.Graph, nil)
//	engine, _ := impred.New(doc.Graph, opts)
//	defer engine.Close()
//	_ = engine.Iterate(context.Background(), 200)
//	_ = io.ExportJSON(doc, "drawing.layout.json")
//
// [pipeline.Runner] wraps the same steps with caching and rendering and is
// what the CLI and the HTTP server use.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test ./pkg/impred/...             # Engine and terms
//	go test -run Example ./pkg/...       # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/graph
// [geom]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/geom
// [locator]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/locator
// [bends]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/bends
// [impred]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/impred
// [config]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/render
// [quality]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/quality
// [server]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/server
// [store]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/impred/pkg/observability
package pkg
