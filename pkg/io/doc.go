// Package io provides JSON import and export for attributed layout graphs.
//
// # Overview
//
// This package serializes a [graph.Graph] together with the well-known
// layout attributes, so a graph can be read from a file, laid out by the
// engine, and written back with its final positions. The format is designed
// for:
//
//   - Feeding graphs produced by external tools into the layout engine
//   - Caching and storing finished layouts
//   - Round-trip preservation: import, lay out, export, and re-import identically
//
// # JSON Format
//
// The format has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "a", "position": [0, 0], "size": [20, 10]},
//	    {"id": "b", "position": [40, 0], "pinned": true}
//	  ],
//	  "edges": [
//	    {"from": "a", "to": "b", "control_points": [[20, 15]], "flexible": true}
//	  ]
//	}
//
// # Node Fields
//
// Required:
//   - id: Unique string identifier
//
// Optional:
//   - position: [x, y], defaults to the origin
//   - size: [width, height], defaults to zero
//   - label, shape: display hints for renderers
//   - target: [x, y] point the node is attracted to
//   - pinned: the node never moves
//
// # Edge Fields
//
// Required:
//   - from, to: node identifiers
//
// Optional:
//   - control_points: bend points in order from source to target
//   - width: stroke width
//   - flexible: the edge may gain and lose bends during layout
//
// # Import
//
// Use [ImportJSON] to read a document from a file path, or [ReadJSON] to read
// from any io.Reader. Both validate identifiers and coordinates and return
// INVALID_FORMAT errors naming the offending node or edge.
//
// # Export
//
// Use [ExportJSON] or [WriteJSON]. Nodes keep the identifiers they were
// imported with; nodes created programmatically receive generated ones.
// Attributes equal to their default are omitted.
package io
