package force

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
)

// EdgeAttraction pulls the endpoints of every segment toward each other
// with magnitude (d/desired)^k. The desired length grows by the endpoint
// footprints as the temperature falls, so large nodes end up further
// apart.
type EdgeAttraction struct {
	Desired       float64
	StartExponent float64
	EndExponent   float64
	Edges         []graph.Edge
}

func (f *EdgeAttraction) Compute(ctx *impred.Context) impred.Forces {
	out := impred.Forces{}
	k := exponent(f.StartExponent, f.EndExponent, ctx.Temperature)
	for _, e := range ctx.Segments(f.Edges) {
		s, t, ps, pt := ctx.Endpoints(e)
		if s == t {
			continue
		}
		d := geom.Distance(ps, pt)
		if d <= geom.Epsilon {
			continue
		}
		desired := f.Desired + (1-ctx.Temperature)*(ctx.Footprint(s)+ctx.Footprint(t))
		v := r2.Scale(pow(d/desired, k)/d, r2.Sub(pt, ps))
		out.Add(s, v)
		out.Add(t, r2.Scale(-1, v))
	}
	return out
}

// PointAttraction pulls nodes toward a per-node target with magnitude
// (d/10)^k.
type PointAttraction struct {
	// Targets is an attribute of the original graph.
	Targets  *graph.Attribute[graph.Node, geom.Vec]
	Exponent float64

	// SkipDefault limits the term to nodes with an explicit target.
	SkipDefault bool
}

func (f *PointAttraction) Compute(ctx *impred.Context) impred.Forces {
	out := impred.Forces{}
	if f.Targets == nil {
		return out
	}
	var nodes []graph.Node
	if f.SkipDefault {
		nodes = f.Targets.NonDefault()
	} else {
		nodes = ctx.Sync.Original().Nodes()
	}
	for _, n := range nodes {
		m, ok := ctx.Sync.MirrorNode(n)
		if !ok {
			continue
		}
		delta := r2.Sub(f.Targets.Get(n), ctx.Position(m))
		d := r2.Norm(delta)
		if d <= geom.Epsilon {
			continue
		}
		out.Add(m, r2.Scale(pow(d/10, f.Exponent)/d, delta))
	}
	return out
}

// CurveSmoothing pulls every interior joint of an edge's segment chain two
// thirds of the way toward the midpoint of its neighbours.
type CurveSmoothing struct {
	Edges []graph.Edge
}

func (f *CurveSmoothing) Compute(ctx *impred.Context) impred.Forces {
	out := impred.Forces{}
	edges := f.Edges
	if edges == nil {
		edges = ctx.Sync.OriginalEdges()
	}
	for _, e := range edges {
		chain := ctx.Sync.ChainNodes(e)
		for i := 1; i+1 < len(chain); i++ {
			mid := geom.Midpoint(ctx.Position(chain[i-1]), ctx.Position(chain[i+1]))
			out.Add(chain[i], r2.Scale(2.0/3.0, r2.Sub(mid, ctx.Position(chain[i]))))
		}
	}
	return out
}
