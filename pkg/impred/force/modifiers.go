package force

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
)

// TemperatureGate silences a force until the temperature drops below
// Threshold, then fades it in linearly: the wrapped output is scaled by
// (Threshold-T)/Threshold.
type TemperatureGate struct {
	Force     impred.Force
	Threshold float64
}

// Attach forwards to the wrapped force if it needs an engine.
func (g *TemperatureGate) Attach(e *impred.Engine) {
	if a, ok := g.Force.(impred.Attacher); ok {
		a.Attach(e)
	}
}

func (g *TemperatureGate) Compute(ctx *impred.Context) impred.Forces {
	if g.Threshold <= 0 || ctx.Temperature >= g.Threshold {
		return impred.Forces{}
	}
	scale := (g.Threshold - ctx.Temperature) / g.Threshold
	out := g.Force.Compute(ctx)
	for n, v := range out {
		out[n] = r2.Scale(scale, v)
	}
	return out
}

// Jitter adds a random vector of length at most Max in a uniformly random
// direction to every node.
type Jitter struct {
	Max   float64
	Nodes []graph.Node

	// Rand is the random source; nil uses the global generator.
	Rand *rand.Rand
}

func (j *Jitter) float() float64 {
	if j.Rand != nil {
		return j.Rand.Float64()
	}
	return rand.Float64()
}

func (j *Jitter) Compute(ctx *impred.Context) impred.Forces {
	out := impred.Forces{}
	for _, n := range ctx.MirrorNodes(j.Nodes) {
		length := j.float() * j.Max
		sin, cos := math.Sincos(j.float() * 2 * math.Pi)
		out.Add(n, r2.Vec{X: length * cos, Y: length * sin})
	}
	return out
}
