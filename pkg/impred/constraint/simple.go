package constraint

import (
	"cmp"
	"math"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
)

// DecreasingMax caps every node at Initial × temperature.
type DecreasingMax struct {
	Initial float64
}

func (d *DecreasingMax) Compute(ctx *impred.Context) impred.Caps {
	caps := impred.NewCaps()
	caps.Default = d.Initial * ctx.Temperature
	return caps
}

// Pinned caps the selected nodes at zero. Nodes are original handles;
// Attribute, when set, pins every original node for which it is true.
type Pinned struct {
	Nodes     []graph.Node
	Attribute *graph.Attribute[graph.Node, bool]
}

func (p *Pinned) Compute(ctx *impred.Context) impred.Caps {
	caps := impred.NewCaps()
	pin := func(n graph.Node) {
		if m, ok := ctx.Sync.MirrorNode(n); ok {
			caps.Lower(m, 0)
		}
	}
	for _, n := range p.Nodes {
		pin(n)
	}
	if p.Attribute == nil {
		return caps
	}
	if p.Attribute.Default() {
		for _, n := range ctx.Sync.Original().Nodes() {
			if p.Attribute.Get(n) {
				pin(n)
			}
		}
		return caps
	}
	p.Attribute.Each(func(n graph.Node, pinned bool) {
		if pinned {
			pin(n)
		}
	})
	return caps
}

// Default parameters of Acceleration.
const (
	DefaultGrowth = 1.5
	DefaultShrink = 0.5
)

// Acceleration adapts each node's cap to how steadily its force points the
// same way. A turn below 60° grows the cap by Growth up to Max, a turn
// between 60° and 90° keeps it, and a sharper turn shrinks it by Shrink.
// A node without force forgets its history.
type Acceleration struct {
	impred.Attachment

	Initial float64
	Max     float64
	Growth  float64
	Shrink  float64

	memory map[graph.Node]momentum
}

type momentum struct {
	direction geom.Vec
	allowed   float64
}

func (a *Acceleration) Compute(ctx *impred.Context) impred.Caps {
	a.Check(ctx)
	growth := cmp.Or(a.Growth, DefaultGrowth)
	shrink := cmp.Or(a.Shrink, DefaultShrink)
	limit := a.Max
	if limit <= 0 {
		limit = math.Inf(1)
	}

	caps := impred.NewCaps()
	next := make(map[graph.Node]momentum, len(a.memory))
	for _, n := range ctx.Graph.Nodes() {
		f := ctx.Force(n)
		if geom.IsZero(f) {
			continue
		}
		allowed := a.Initial
		if prev, ok := a.memory[n]; ok {
			allowed = prev.allowed
			switch turn := geom.AngleBetween(prev.direction, f); {
			case turn < math.Pi/3:
				allowed = math.Min(allowed*growth, limit)
			case turn > math.Pi/2:
				allowed *= shrink
			}
		}
		next[n] = momentum{direction: geom.Unit(f), allowed: allowed}
		caps.Lower(n, allowed)
	}
	a.memory = next
	return caps
}
