// Package graph provides the attributed multigraph the layout engine works on.
//
// # Overview
//
// A [Graph] owns node and edge identities. Handles ([Node], [Edge]) are
// opaque integers allocated by the graph; they are never reused within one
// graph, so they give a total order that callers may rely on (for example
// to visit each unordered node pair exactly once). Multiple edges between
// the same nodes and self-loops are allowed.
//
//	g := graph.New()
//	a, b := g.AddNode(), g.AddNode()
//	e, _ := g.AddEdge(a, b)
//
// # Attributes
//
// Per-element data lives in typed attributes created on first use with a
// default value. The well-known keys have helpers:
//
//	pos := graph.Positions(g)       // node → geom.Vec
//	size := graph.Sizes(g)          // node → geom.Vec
//	ctrl := graph.ControlPoints(g)  // edge → []geom.Vec
//	pos.Set(a, geom.Vec{X: 10})
//
// [Attribute.Get] returns the default for elements that were never set;
// [Attribute.NonDefault] lists the elements with an explicit value.
//
// # Change Notification
//
// Attributes notify subscribed [AttributeListener]s with the changed
// elements, or with UpdateAll when the default changes. Wrapping a sequence
// of writes in [Attribute.BeginBatch] / [Attribute.EndBatch] collapses the
// notifications into a single Update on the outermost EndBatch; the layout
// engine uses this to hide half-applied iterations from observers.
// Structural changes are reported to graph-level [Listener]s.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Engines running on the
// same original graph each operate on their own mirror graph.
package graph
