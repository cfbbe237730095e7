// Package quality measures properties of a graph drawing that the layout is
// expected to keep or improve.
//
// The most important is the crossing count: the engine never lets a node
// cross an edge, so a drawing's crossings must be the same before and after
// a layout run (bend insertion and removal by flexible edges included).
package quality

import (
	"math"
	"slices"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
)

// Report summarizes a drawing.
type Report struct {
	// Crossings counts intersecting pairs of edges that share no endpoint.
	// A pair crossing several times counts once per segment pair.
	Crossings int `json:"crossings"`

	// MeanEdgeLength is the average polyline length of all edges.
	MeanEdgeLength float64 `json:"mean_edge_length"`

	// MinNodeDistance is the smallest distance between two node centers,
	// or zero for fewer than two nodes.
	MinNodeDistance float64 `json:"min_node_distance"`
}

// Measure computes a report from the default position and control point
// attributes of g.
func Measure(g *graph.Graph) Report {
	return MeasureWith(g, graph.Positions(g), graph.ControlPoints(g))
}

// MeasureWith computes a report from explicit attributes.
func MeasureWith(g *graph.Graph, pos *graph.Attribute[graph.Node, geom.Vec], ctrl *graph.Attribute[graph.Edge, []geom.Vec]) Report {
	segs := segments(g, pos, ctrl)

	var r Report
	r.Crossings = countCrossings(segs)
	if n := g.EdgeCount(); n > 0 {
		var total float64
		for _, s := range segs {
			total += s.Length()
		}
		r.MeanEdgeLength = total / float64(n)
	}
	r.MinNodeDistance = minDistance(g, pos)
	return r
}

// segment is one straight piece of an edge's polyline.
type segment struct {
	geom.Segment
	edge     graph.Edge
	from, to graph.Node
	box      geom.Box
}

func segments(g *graph.Graph, pos *graph.Attribute[graph.Node, geom.Vec], ctrl *graph.Attribute[graph.Edge, []geom.Vec]) []segment {
	var out []segment
	for _, e := range g.Edges() {
		s, t, ok := g.Ends(e)
		if !ok {
			continue
		}
		pts := append([]geom.Vec{pos.Get(s)}, ctrl.Get(e)...)
		pts = append(pts, pos.Get(t))
		for i := 0; i+1 < len(pts); i++ {
			seg := geom.Segment{A: pts[i], B: pts[i+1]}
			out = append(out, segment{Segment: seg, edge: e, from: s, to: t, box: seg.Bounds()})
		}
	}
	return out
}

// countCrossings sweeps the segments by their left bound so that only
// pairs with overlapping x extents are tested.
func countCrossings(segs []segment) int {
	slices.SortFunc(segs, func(a, b segment) int {
		switch {
		case a.box.Min.X < b.box.Min.X:
			return -1
		case a.box.Min.X > b.box.Min.X:
			return 1
		}
		return 0
	})

	crossings := 0
	for i, a := range segs {
		for _, b := range segs[i+1:] {
			if b.box.Min.X > a.box.Max.X {
				break
			}
			if !geom.Overlaps(a.box, b.box) || adjacent(a, b) {
				continue
			}
			if a.Touches(b.Segment) {
				crossings++
			}
		}
	}
	return crossings
}

// adjacent reports whether two segments belong to the same edge or to
// edges sharing an endpoint.
func adjacent(a, b segment) bool {
	return a.edge == b.edge ||
		a.from == b.from || a.from == b.to ||
		a.to == b.from || a.to == b.to
}

func minDistance(g *graph.Graph, pos *graph.Attribute[graph.Node, geom.Vec]) float64 {
	nodes := g.Nodes()
	if len(nodes) < 2 {
		return 0
	}
	best := math.Inf(1)
	for i, u := range nodes {
		pu := pos.Get(u)
		for _, v := range nodes[i+1:] {
			best = math.Min(best, geom.Distance(pu, pos.Get(v)))
		}
	}
	return best
}
