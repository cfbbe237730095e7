package force

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
)

// DefaultActivityFactor is the interaction range of the repulsion terms in
// multiples of the desired distance.
const DefaultActivityFactor = 3

// NodeRepulsion pushes node pairs apart with magnitude (desired/d)^k. Only
// pairs closer than ActivityFactor×Desired interact.
type NodeRepulsion struct {
	Desired        float64
	StartExponent  float64
	EndExponent    float64
	ActivityFactor float64
	Nodes          []graph.Node
}

func activityRange(desired, factor float64) float64 {
	if factor <= 0 {
		factor = DefaultActivityFactor
	}
	return desired * factor
}

func (f *NodeRepulsion) Compute(ctx *impred.Context) impred.Forces {
	out := impred.Forces{}
	k := exponent(f.StartExponent, f.EndExponent, ctx.Temperature)
	reach := activityRange(f.Desired, f.ActivityFactor)

	nodes := ctx.MirrorNodes(f.Nodes)
	slices.Sort(nodes)
	for _, a := range nodes {
		pa := ctx.Position(a)
		for _, b := range ctx.Locator.NodesNear(pa, reach) {
			if b <= a {
				continue
			}
			if _, found := slices.BinarySearch(nodes, b); !found {
				continue
			}
			delta := r2.Sub(pa, ctx.Position(b))
			d := r2.Norm(delta)
			if d <= geom.Epsilon || d > reach {
				continue
			}
			v := r2.Scale(pow(f.Desired/d, k)/d, delta)
			out.Add(a, v)
			out.Add(b, r2.Scale(-1, v))
		}
	}
	return out
}

// EdgeNodeRepulsion pushes nodes away from nearby segments. When the node
// projects inside a segment it is pushed perpendicular to it and the
// reaction is split between the endpoints by the projection parameter;
// otherwise the closer endpoint is the collision point.
type EdgeNodeRepulsion struct {
	Desired        float64
	StartExponent  float64
	EndExponent    float64
	ActivityFactor float64
	Nodes          []graph.Node
	Edges          []graph.Edge
}

func (f *EdgeNodeRepulsion) Compute(ctx *impred.Context) impred.Forces {
	out := impred.Forces{}
	k := exponent(f.StartExponent, f.EndExponent, ctx.Temperature)
	reach := activityRange(f.Desired, f.ActivityFactor)

	var allowed []graph.Edge
	if f.Edges != nil {
		allowed = ctx.Segments(f.Edges)
		slices.Sort(allowed)
	}

	for _, n := range ctx.MirrorNodes(f.Nodes) {
		p := ctx.Position(n)
		for _, e := range ctx.Locator.EdgesNearNode(n, reach) {
			if ctx.Graph.IsIncident(e, n) {
				continue
			}
			if allowed != nil {
				if _, found := slices.BinarySearch(allowed, e); !found {
					continue
				}
			}
			s, t, ps, pt := ctx.Endpoints(e)
			seg := geom.Segment{A: ps, B: pt}
			if seg.Degenerate() {
				continue
			}
			u, foot, err := seg.Project(p)
			if err != nil {
				continue
			}
			switch {
			case u > 0 && u < 1:
				f.push(out, p, foot, reach, k, n, map[graph.Node]float64{s: 1 - u, t: u})
			case u <= 0:
				f.push(out, p, ps, reach, k, n, map[graph.Node]float64{s: 1})
			default:
				f.push(out, p, pt, reach, k, n, map[graph.Node]float64{t: 1})
			}
		}
	}
	return out
}

// push applies the repulsion between node n at p and the collision point
// c, distributing the reaction over the given endpoint weights.
func (f *EdgeNodeRepulsion) push(out impred.Forces, p, c geom.Vec, reach, k float64, n graph.Node, reaction map[graph.Node]float64) {
	delta := r2.Sub(p, c)
	d := r2.Norm(delta)
	if d <= geom.Epsilon || d > reach {
		return
	}
	v := r2.Scale(pow(f.Desired/d, k)/d, delta)
	out.Add(n, v)
	for m, w := range reaction {
		out.Add(m, r2.Scale(-w, v))
	}
}
