package constraint

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
)

func place(g *graph.Graph, points ...geom.Vec) []graph.Node {
	nodes := make([]graph.Node, len(points))
	for i, p := range points {
		nodes[i] = g.AddNode()
		graph.Positions(g).Set(nodes[i], p)
	}
	return nodes
}

// push returns a force term applying a fixed vector to node n.
func push(n graph.Node, v geom.Vec) impred.Force {
	return impred.ForceFunc(func(ctx *impred.Context) impred.Forces {
		m, _ := ctx.Sync.MirrorNode(n)
		return impred.Forces{m: v}
	})
}

func TestDecreasingMax(t *testing.T) {
	g := graph.New()
	place(g, geom.Vec{})
	e, _ := impred.New(g, impred.Options{Thermostat: impred.Constant{T: 0.4}})
	_ = e.Step()

	caps := (&DecreasingMax{Initial: 5}).Compute(e.Context())
	if caps.Default != 2 {
		t.Errorf("default cap = %v, want 2", caps.Default)
	}
	if len(caps.Nodes) != 0 {
		t.Errorf("unexpected node caps: %v", caps.Nodes)
	}
}

func TestPinnedByAttribute(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{}, geom.Vec{X: 1}, geom.Vec{X: 2})
	pinned := graph.NodeAttribute(g, "pinned", false)
	pinned.Set(n[1], true)

	e, _ := impred.New(g, impred.Options{})
	_ = e.Step()
	ctx := e.Context()

	caps := (&Pinned{Nodes: n[:1], Attribute: pinned}).Compute(ctx)
	for i, want := range []bool{true, true, false} {
		mn, _ := ctx.Sync.MirrorNode(n[i])
		c, ok := caps.Nodes[mn]
		if ok != want || (ok && c != 0) {
			t.Errorf("node %d: cap %v set=%v, want pinned=%v", i, c, ok, want)
		}
	}

	pinned.SetDefault(true)
	caps = (&Pinned{Attribute: pinned}).Compute(ctx)
	if len(caps.Nodes) != 3 {
		t.Errorf("default-true attribute pinned %d nodes, want 3", len(caps.Nodes))
	}
}

func TestAcceleration(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{})[0]
	dir := geom.Vec{X: 1}

	var seen []float64
	acc := &Acceleration{Initial: 1, Max: 3}
	record := impred.PostProcessorFunc(func(ctx *impred.Context) error {
		mn, _ := ctx.Sync.MirrorNode(n)
		seen = append(seen, ctx.Constraint(mn))
		return nil
	})
	steer := impred.ForceFunc(func(ctx *impred.Context) impred.Forces {
		mn, _ := ctx.Sync.MirrorNode(n)
		return impred.Forces{mn: dir}
	})
	e, err := impred.New(g, impred.Options{
		Thermostat:     impred.Constant{T: 1},
		Forces:         []impred.Force{steer},
		Constraints:    []impred.Constraint{acc},
		PostProcessing: []impred.PostProcessor{record},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	steps := []struct {
		direction geom.Vec
		want      float64
	}{
		{geom.Vec{X: 1}, 1},           // first sighting
		{geom.Vec{X: 1, Y: 0.1}, 1.5}, // small turn grows
		{geom.Vec{X: 1}, 2.25},
		{geom.Vec{X: 1}, 3},          // bounded by Max
		{geom.Vec{X: 1, Y: 1.5}, 3},  // ~56° still grows, stays at Max
		{geom.Vec{X: -1, Y: 1}, 3},   // ~79° holds
		{geom.Vec{X: 1, Y: -1}, 1.5}, // reversal shrinks
		{geom.Vec{}, math.Inf(1)},    // no force forgets
		{geom.Vec{X: -1}, 1},         // starts over
	}
	for i, s := range steps {
		dir = s.direction
		if err := e.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if got := seen[i]; math.Abs(got-s.want) > 1e-9 && !(math.IsInf(got, 1) && math.IsInf(s.want, 1)) {
			t.Errorf("step %d: cap %v, want %v", i, got, s.want)
		}
	}
}

func TestSurroundingEdgesOutsideCase(t *testing.T) {
	g := graph.New()
	// segment a-b on the x axis, node beyond a
	n := place(g, geom.Vec{}, geom.Vec{X: 10}, geom.Vec{X: -4, Y: 2})
	_, _ = g.AddEdge(n[0], n[1])

	e, _ := impred.New(g, impred.Options{
		Thermostat: impred.Constant{T: 1},
		Forces: []impred.Force{
			push(n[2], geom.Vec{X: 2, Y: -1}),
			push(n[0], geom.Vec{X: -2, Y: 1}),
			push(n[1], geom.Vec{Y: 1}),
		},
		Constraints: []impred.Constraint{&SurroundingEdges{}},
	})
	if err := e.Iterate(context.Background(), 1); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	ctx := e.Context()
	capOf := func(i int) float64 {
		mn, _ := ctx.Sync.MirrorNode(n[i])
		return ctx.Constraint(mn)
	}

	half := math.Sqrt(20) / 2
	if got := capOf(2); math.Abs(got-half) > 1e-9 {
		t.Errorf("node cap = %v, want %v", got, half)
	}
	if got := capOf(0); math.Abs(got-half) > 1e-9 {
		t.Errorf("close endpoint cap = %v, want %v", got, half)
	}
	if got := capOf(1); math.Abs(got-2) > 1e-9 {
		t.Errorf("far endpoint cap = %v, want 2", got)
	}
}

func TestSurroundingEdgesIgnoresIncident(t *testing.T) {
	g := graph.New()
	n := place(g, geom.Vec{}, geom.Vec{X: 10})
	_, _ = g.AddEdge(n[0], n[1])

	e, _ := impred.New(g, impred.Options{
		Forces:      []impred.Force{push(n[0], geom.Vec{X: 1})},
		Constraints: []impred.Constraint{&SurroundingEdges{}},
	})
	_ = e.Step()
	mn, _ := e.Sync().MirrorNode(n[0])
	if got := e.Context().Constraint(mn); !math.IsInf(got, 1) {
		t.Errorf("incident edge capped its own endpoint: %v", got)
	}
}
