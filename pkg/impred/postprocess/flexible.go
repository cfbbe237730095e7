package postprocess

import (
	"fmt"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
	"github.com/matzehuels/impred/pkg/locator"
)

// FlexibleEdges lets edges gain and lose bends while the layout is hot.
//
// Every Every-th iteration, as long as the temperature is above
// ShutdownTemperature, each segment longer than ExpandThreshold is split at
// its midpoint. Afterwards every bend whose two segments are together
// shorter than ContractThreshold is removed, unless another node lies in
// the triangle formed by the bend and its neighbours.
type FlexibleEdges struct {
	impred.Attachment

	// Edges are original edges; nil selects all of them.
	Edges               []graph.Edge
	Every               int
	ShutdownTemperature float64
	ExpandThreshold     float64
	ContractThreshold   float64

	calls int
}

func (f *FlexibleEdges) Process(ctx *impred.Context) error {
	f.Check(ctx)
	f.calls++
	if f.Every > 1 && (f.calls-1)%f.Every != 0 {
		return nil
	}
	if ctx.Temperature <= f.ShutdownTemperature {
		return nil
	}

	edges := f.Edges
	if edges == nil {
		edges = ctx.Sync.OriginalEdges()
	}
	if f.ExpandThreshold > 0 {
		for _, e := range edges {
			if err := f.expand(ctx, e); err != nil {
				return err
			}
		}
	}
	if f.ContractThreshold > 0 {
		ctx.Locator.Rebuild()
		for _, e := range edges {
			f.contract(ctx, e)
		}
	}
	return nil
}

func (f *FlexibleEdges) expand(ctx *impred.Context, e graph.Edge) error {
	chain := ctx.Sync.Chain(e)
	if len(chain) == 0 {
		return fmt.Errorf("flexible edge %d: %w", e, graph.ErrUnknownEdge)
	}
	for _, seg := range chain {
		_, _, ps, pt := ctx.Endpoints(seg)
		if geom.Distance(ps, pt) <= f.ExpandThreshold {
			continue
		}
		if _, _, err := ctx.Sync.InsertBendMidpoint(seg); err != nil {
			return fmt.Errorf("expand edge %d: %w", e, err)
		}
	}
	return nil
}

func (f *FlexibleEdges) contract(ctx *impred.Context, e graph.Edge) {
	nodes := ctx.Sync.ChainNodes(e)
	for i := 1; i+1 < len(nodes); {
		a, b, c := nodes[i-1], nodes[i], nodes[i+1]
		pa, pb, pc := ctx.Position(a), ctx.Position(b), ctx.Position(c)
		if geom.Distance(pa, pb)+geom.Distance(pb, pc) >= f.ContractThreshold || f.occupied(ctx, a, b, c) {
			i++
			continue
		}
		if _, err := ctx.Sync.RemoveBend(b); err != nil {
			i++
			continue
		}
		nodes = ctx.Sync.ChainNodes(e)
	}
}

// occupied reports whether a node other than a, b and c lies inside the
// triangle they span.
func (f *FlexibleEdges) occupied(ctx *impred.Context, a, b, c graph.Node) bool {
	pa, pb, pc := ctx.Position(a), ctx.Position(b), ctx.Position(c)
	for _, n := range ctx.Locator.NodesInBox(geom.BoxOf(pa, pb, pc), locator.Inside) {
		if n == a || n == b || n == c || !ctx.Graph.HasNode(n) {
			continue
		}
		if geom.InTriangle(ctx.Position(n), pa, pb, pc) {
			return true
		}
	}
	return false
}

var _ impred.PostProcessor = (*FlexibleEdges)(nil)
