package force

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
)

// stepped returns the context of an engine without terms after one
// iteration at temperature t.
func stepped(t *testing.T, g *graph.Graph, temperature float64) *impred.Context {
	t.Helper()
	e, err := impred.New(g, impred.Options{Thermostat: impred.Constant{T: temperature}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	return e.Context()
}

func place(g *graph.Graph, points ...geom.Vec) []graph.Node {
	nodes := make([]graph.Node, len(points))
	for i, p := range points {
		nodes[i] = g.AddNode()
		graph.Positions(g).Set(nodes[i], p)
	}
	return nodes
}

func m(ctx *impred.Context, n graph.Node) graph.Node {
	mn, _ := ctx.Sync.MirrorNode(n)
	return mn
}

func TestEdgeAttraction(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
		size        geom.Vec
		want        float64
	}{
		{"hot ignores sizes", 1, geom.Vec{X: 6, Y: 8}, math.Pow(20.0/10, 2)},
		{"cold adds footprints", 0, geom.Vec{X: 6, Y: 8}, 20.0 / 20},
		{"halfway", 0.5, geom.Vec{}, math.Pow(2, 1.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			n := place(g, geom.Vec{}, geom.Vec{X: 20})
			e, _ := g.AddEdge(n[0], n[1])
			graph.Sizes(g).Set(n[0], tt.size)
			graph.Sizes(g).Set(n[1], tt.size)
			ctx := stepped(t, g, tt.temperature)

			f := &EdgeAttraction{Desired: 10, StartExponent: 2, EndExponent: 1, Edges: []graph.Edge{e}}
			out := f.Compute(ctx)
			fs, ft := out[m(ctx, n[0])], out[m(ctx, n[1])]
			if !geom.EqVec(fs, r2.Scale(-1, ft)) {
				t.Errorf("forces not opposite: %v vs %v", fs, ft)
			}
			if fs.X <= 0 {
				t.Errorf("source not pulled toward target: %v", fs)
			}
			if got := r2.Norm(fs); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("magnitude = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeRepulsionPairsOnceAndRange(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{}, geom.Vec{X: 4}, geom.Vec{X: 100})
	ctx := stepped(t, g, 1)

	out := (&NodeRepulsion{Desired: 4, StartExponent: 1, EndExponent: 1}).Compute(ctx)
	a, b, far := out[m(ctx, n[0])], out[m(ctx, n[1])], out[m(ctx, n[2])]
	if !geom.EqVec(a, geom.Vec{X: -1}) || !geom.EqVec(b, geom.Vec{X: 1}) {
		t.Errorf("pair forces = %v, %v; want (-1,0), (1,0)", a, b)
	}
	if far != (geom.Vec{}) {
		t.Errorf("node out of range received %v", far)
	}
}

func TestNodeRepulsionSubset(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{}, geom.Vec{X: 1}, geom.Vec{Y: 1})
	ctx := stepped(t, g, 1)

	out := (&NodeRepulsion{Desired: 2, StartExponent: 1, EndExponent: 1, Nodes: n[:2]}).Compute(ctx)
	if _, ok := out[m(ctx, n[2])]; ok {
		t.Error("node outside the subset received a force")
	}
}

func TestEdgeNodeRepulsion(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{}, geom.Vec{X: 10}, geom.Vec{X: 2.5, Y: 2}, geom.Vec{X: -3})
	_, _ = g.AddEdge(n[0], n[1])
	ctx := stepped(t, g, 1)

	out := (&EdgeNodeRepulsion{Desired: 4, StartExponent: 1, EndExponent: 1, Nodes: n[2:3]}).Compute(ctx)
	node, s, tg := out[m(ctx, n[2])], out[m(ctx, n[0])], out[m(ctx, n[1])]
	if !geom.EqVec(node, geom.Vec{Y: 2}) {
		t.Errorf("node force = %v, want (0,2)", node)
	}
	if !geom.EqVec(s, geom.Vec{Y: -1.5}) || !geom.EqVec(tg, geom.Vec{Y: -0.5}) {
		t.Errorf("reaction = %v, %v; want (0,-1.5), (0,-0.5)", s, tg)
	}

	out = (&EdgeNodeRepulsion{Desired: 6, StartExponent: 1, EndExponent: 1, Nodes: n[3:]}).Compute(ctx)
	if got := out[m(ctx, n[3])]; !geom.EqVec(got, geom.Vec{X: -2}) {
		t.Errorf("outside node force = %v, want (-2,0)", got)
	}
	if got := out[m(ctx, n[0])]; !geom.EqVec(got, geom.Vec{X: 2}) {
		t.Errorf("closer endpoint reaction = %v, want (2,0)", got)
	}
	if _, ok := out[m(ctx, n[1])]; ok {
		t.Error("far endpoint received a reaction")
	}
}

func TestPointAttraction(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{}, geom.Vec{X: 5})
	targets := graph.NodeAttribute(g, "target", geom.Vec{})
	targets.Set(n[0], geom.Vec{Y: 20})
	ctx := stepped(t, g, 1)

	out := (&PointAttraction{Targets: targets, Exponent: 2}).Compute(ctx)
	if got := out[m(ctx, n[0])]; !geom.EqVec(got, geom.Vec{Y: 4}) {
		t.Errorf("force = %v, want (0,4)", got)
	}
	if got := out[m(ctx, n[1])]; !geom.EqVec(got, geom.Vec{X: -0.25}) {
		t.Errorf("default target force = %v, want (-0.25,0)", got)
	}

	out = (&PointAttraction{Targets: targets, Exponent: 2, SkipDefault: true}).Compute(ctx)
	if _, ok := out[m(ctx, n[1])]; ok {
		t.Error("SkipDefault included a node without target")
	}
}

func TestCurveSmoothing(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{}, geom.Vec{X: 10})
	e, _ := g.AddEdge(n[0], n[1])
	graph.ControlPoints(g).Set(e, []geom.Vec{{X: 5, Y: 6}})
	ctx := stepped(t, g, 1)

	out := (&CurveSmoothing{}).Compute(ctx)
	bend := ctx.Sync.ChainNodes(e)[1]
	if got := out[bend]; !geom.EqVec(got, geom.Vec{Y: -4}) {
		t.Errorf("joint force = %v, want (0,-4)", got)
	}
	if len(out) != 1 {
		t.Errorf("endpoints received forces: %v", out)
	}
}

func TestTemperatureGate(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{}, geom.Vec{X: 2})
	inner := &NodeRepulsion{Desired: 2, StartExponent: 1, EndExponent: 1}

	tests := []struct {
		temperature float64
		want        float64
	}{
		{1, 0},
		{0.5, 0},
		{0.25, 0.5},
		{0, 1},
	}
	for _, tt := range tests {
		ctx := stepped(t, g, tt.temperature)
		out := (&TemperatureGate{Force: inner, Threshold: 0.5}).Compute(ctx)
		if got := r2.Norm(out[m(ctx, n[0])]); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("T=%v: magnitude %v, want %v", tt.temperature, got, tt.want)
		}
	}
}

func TestJitterBounded(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{}, geom.Vec{X: 1}, geom.Vec{Y: 1})
	ctx := stepped(t, g, 1)

	j := &Jitter{Max: 0.5, Rand: rand.New(rand.NewPCG(1, 1))}
	for range 20 {
		out := j.Compute(ctx)
		if len(out) != len(n) {
			t.Fatalf("jittered %d nodes, want %d", len(out), len(n))
		}
		for _, v := range out {
			if r2.Norm(v) > 0.5 {
				t.Fatalf("jitter %v exceeds max", v)
			}
		}
	}
}
