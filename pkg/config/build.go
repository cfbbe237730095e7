package config

import (
	"cmp"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
	"github.com/matzehuels/impred/pkg/impred/constraint"
	"github.com/matzehuels/impred/pkg/impred/force"
	"github.com/matzehuels/impred/pkg/impred/postprocess"
	"github.com/matzehuels/impred/pkg/impred/premove"
)

// Build validates c and returns engine options with freshly constructed
// terms for g. Per-node data comes from g's pinned, target and flexible
// attributes.
func (c *Config) Build(g *graph.Graph, logger *log.Logger) (impred.Options, error) {
	if err := c.Validate(); err != nil {
		return impred.Options{}, err
	}

	opts := impred.Options{
		PositionKey:      c.PositionKey,
		ControlPointsKey: c.ControlPointsKey,
		CellSize:         c.CellSize,
		Logger:           logger,
	}
	switch c.Thermostat.Kind {
	case ThermostatConstant:
		opts.Thermostat = impred.Constant{T: c.Thermostat.Temperature}
	default:
		opts.Thermostat = impred.NewLinearCooldown()
	}

	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for _, t := range c.Forces {
		f := t.force(g, rng)
		if t.GateBelow > 0 {
			f = &force.TemperatureGate{Force: f, Threshold: t.GateBelow}
		}
		opts.Forces = append(opts.Forces, f)
	}
	for _, t := range c.Constraints {
		opts.Constraints = append(opts.Constraints, t.constraint(g))
	}
	for _, t := range c.PreMovement {
		opts.PreMovement = append(opts.PreMovement, &premove.VectorField{
			MinGridDimension: t.MinGridDimension,
			Smoothness:       t.Smoothness,
		})
	}
	for _, t := range c.PostProcessing {
		opts.PostProcessing = append(opts.PostProcessing, t.postProcessor(g))
	}
	return opts, nil
}

func (t Term) force(g *graph.Graph, rng *rand.Rand) impred.Force {
	switch t.Kind {
	case KindEdgeAttraction:
		return &force.EdgeAttraction{
			Desired:       cmp.Or(t.Desired, 50),
			StartExponent: cmp.Or(t.StartExponent, 1),
			EndExponent:   cmp.Or(t.EndExponent, 1),
		}
	case KindNodeRepulsion:
		return &force.NodeRepulsion{
			Desired:        cmp.Or(t.Desired, 50),
			StartExponent:  cmp.Or(t.StartExponent, 2),
			EndExponent:    cmp.Or(t.EndExponent, 2),
			ActivityFactor: t.ActivityFactor,
		}
	case KindEdgeNodeRepulsion:
		return &force.EdgeNodeRepulsion{
			Desired:        cmp.Or(t.Desired, 25),
			StartExponent:  cmp.Or(t.StartExponent, 2),
			EndExponent:    cmp.Or(t.EndExponent, 2),
			ActivityFactor: t.ActivityFactor,
		}
	case KindPointAttraction:
		return &force.PointAttraction{
			Targets:     graph.Targets(g),
			Exponent:    cmp.Or(t.Exponent, 1),
			SkipDefault: true,
		}
	case KindCurveSmoothing:
		return &force.CurveSmoothing{}
	default:
		return &force.Jitter{Max: cmp.Or(t.Max, 1), Rand: rng}
	}
}

func (t Term) constraint(g *graph.Graph) impred.Constraint {
	switch t.Kind {
	case KindDecreasingMax:
		return &constraint.DecreasingMax{Initial: cmp.Or(t.Initial, 50)}
	case KindAcceleration:
		return &constraint.Acceleration{
			Initial: cmp.Or(t.Initial, 10),
			Max:     t.Max,
			Growth:  t.Growth,
			Shrink:  t.Shrink,
		}
	case KindSurroundingEdges:
		return &constraint.SurroundingEdges{}
	default:
		return &constraint.Pinned{Attribute: graph.Pinned(g)}
	}
}

func (t Term) postProcessor(g *graph.Graph) impred.PostProcessor {
	if t.Kind == KindMinIterationTime {
		d, _ := time.ParseDuration(t.MinTime)
		return &postprocess.MinIterationTime{Min: d}
	}
	return &postprocess.FlexibleEdges{
		Edges:               flexibleEdges(g),
		Every:               t.Every,
		ShutdownTemperature: t.ShutdownTemperature,
		ExpandThreshold:     t.ExpandThreshold,
		ContractThreshold:   t.ContractThreshold,
	}
}

// flexibleEdges returns the edges flagged flexible, or nil (every edge) when
// none are flagged.
func flexibleEdges(g *graph.Graph) []graph.Edge {
	var out []graph.Edge
	graph.Flexible(g).Each(func(e graph.Edge, flexible bool) {
		if flexible {
			out = append(out, e)
		}
	})
	return out
}
