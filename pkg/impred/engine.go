package impred

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/impred/pkg/bends"
	"github.com/matzehuels/impred/pkg/errors"
	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/locator"
	"github.com/matzehuels/impred/pkg/observability"
)

// Options configures an Engine. Terms run in slice order within their
// phase.
type Options struct {
	// PositionKey names the original graph's node position attribute.
	// Defaults to graph.KeyPosition.
	PositionKey string

	// ControlPointsKey names the original graph's edge control point
	// attribute. Defaults to graph.KeyControlPoints.
	ControlPointsKey string

	// Thermostat drives the temperature. Defaults to a LinearCooldown.
	Thermostat Thermostat

	Forces         []Force
	Constraints    []Constraint
	PreMovement    []PreMovement
	PostProcessing []PostProcessor

	// CellSize of the spatial locator. Zero derives it from the graph.
	CellSize float64

	// Logger receives per-iteration debug output. Defaults to log.Default().
	Logger *log.Logger
}

// Engine runs ImPrEd iterations on a graph.
//
// An Engine is not safe for concurrent use. Several engines may share an
// original graph as long as they do not step concurrently.
type Engine struct {
	original   *graph.Graph
	opts       Options
	logger     *log.Logger
	thermostat Thermostat

	sync *bends.Sync
	loc  *locator.Locator
	ctx  *Context

	planned   int
	iteration int
}

// New builds an engine for g and attaches every stateful term.
func New(g *graph.Graph, opts Options) (*Engine, error) {
	for _, key := range []string{opts.PositionKey, opts.ControlPointsKey} {
		if key == "" {
			continue
		}
		if err := errors.ValidateAttributeKey(key); err != nil {
			return nil, err
		}
	}
	if err := errors.ValidateCellSize(opts.CellSize); err != nil {
		return nil, err
	}
	if opts.Thermostat == nil {
		opts.Thermostat = NewLinearCooldown()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	sync := bends.New(g, bends.Options{
		PositionKey:      opts.PositionKey,
		ControlPointsKey: opts.ControlPointsKey,
	})
	mirror := sync.Mirror()
	pos, size := graph.Positions(mirror), graph.Sizes(mirror)
	loc, err := locator.New(mirror, pos, size, locator.Options{CellSize: opts.CellSize})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		original:   g,
		opts:       opts,
		logger:     logger,
		thermostat: opts.Thermostat,
		sync:       sync,
		loc:        loc,
	}
	e.ctx = &Context{
		engine:      e,
		Graph:       mirror,
		Sync:        sync,
		Locator:     loc,
		Positions:   pos,
		Sizes:       size,
		Temperature: 1,
		force:       make(map[graph.Node]geom.Vec),
		constraint:  make(map[graph.Node]float64),
		defaultCap:  math.Inf(1),
		movement:    make(map[graph.Node]geom.Vec),
	}

	for _, term := range e.terms() {
		if a, ok := term.(Attacher); ok {
			a.Attach(e)
		}
	}
	return e, nil
}

func (e *Engine) terms() []any {
	var out []any
	for _, t := range e.opts.Forces {
		out = append(out, t)
	}
	for _, t := range e.opts.Constraints {
		out = append(out, t)
	}
	for _, t := range e.opts.PreMovement {
		out = append(out, t)
	}
	for _, t := range e.opts.PostProcessing {
		out = append(out, t)
	}
	return out
}

// Graph returns the original graph.
func (e *Engine) Graph() *graph.Graph { return e.original }

// Sync returns the mirror synchronizer.
func (e *Engine) Sync() *bends.Sync { return e.sync }

// Context returns the state of the most recent iteration. Its accumulators
// stay valid until the next Step.
func (e *Engine) Context() *Context { return e.ctx }

// Temperature returns the temperature of the most recent iteration.
func (e *Engine) Temperature() float64 { return e.ctx.Temperature }

// Iteration returns the number of steps taken in the current plan.
func (e *Engine) Iteration() int { return e.iteration }

// Planned returns the length of the current plan.
func (e *Engine) Planned() int { return e.planned }

// Plan starts a run of n iterations: the iteration count and the
// thermostat restart.
func (e *Engine) Plan(n int) {
	e.planned = n
	e.iteration = 0
	e.thermostat.Plan(n)
}

// remaining returns how many iterations of the current plan are left.
func (e *Engine) remaining() int { return e.planned - e.iteration }

// Iterate runs n iterations. It continues the current plan when at least n
// of its iterations remain and plans a fresh run of n otherwise, so after
// Plan(n) the calls Iterate(ctx, n) and n times Iterate(ctx, 1) are
// equivalent. It returns early with the context's error if ctx is cancelled
// between iterations.
func (e *Engine) Iterate(ctx context.Context, n int) error {
	if err := errors.ValidateIterations(n); err != nil {
		return err
	}
	if e.remaining() < n {
		e.Plan(n)
	}
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	e.logger.Debug("layout finished",
		"iterations", n,
		"nodes", e.original.NodeCount(),
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// Step runs a single iteration of the current plan. When no plan is in
// progress it plans a run of one iteration.
func (e *Engine) Step() error {
	if e.remaining() <= 0 {
		e.Plan(1)
	}
	start := time.Now()
	c := e.ctx

	e.sync.Push()
	moved, err := e.solve(c)
	if err != nil {
		return err
	}
	e.sync.Pull()

	observability.Engine().OnIteration(c.Iteration, c.Temperature, moved, time.Since(start))
	e.logger.Debug("iteration",
		"i", c.Iteration,
		"temperature", fmt.Sprintf("%.3f", c.Temperature),
		"max_movement", fmt.Sprintf("%.4f", moved))
	return nil
}

// solve runs the phases between push and pull inside a position batch and
// returns the largest applied movement.
func (e *Engine) solve(c *Context) (float64, error) {
	c.Positions.BeginBatch()
	defer c.Positions.EndBatch()

	c.reset()
	e.loc.Rebuild()

	c.Temperature = e.thermostat.Next()
	c.Iteration = e.iteration
	e.iteration++

	for _, f := range e.opts.Forces {
		for n, v := range f.Compute(c) {
			if _, ok := c.force[n]; ok {
				c.force[n] = r2.Add(c.force[n], v)
			}
		}
	}

	for _, k := range e.opts.Constraints {
		caps := k.Compute(c)
		c.defaultCap = math.Min(c.defaultCap, caps.Default)
		for n, v := range caps.Nodes {
			if cur, ok := c.constraint[n]; ok && v < cur {
				c.constraint[n] = v
			}
		}
	}

	nodes := c.Graph.Nodes()
	for _, n := range nodes {
		c.movement[n] = Clip(c.force[n], SafetyFactor*c.Constraint(n))
	}

	for i, p := range e.opts.PreMovement {
		if err := p.Adjust(c); err != nil {
			return 0, fmt.Errorf("pre-movement step %d: %w", i, err)
		}
	}

	var moved float64
	for _, n := range nodes {
		m := c.movement[n]
		if m == (geom.Vec{}) {
			continue
		}
		c.Positions.Set(n, r2.Add(c.Positions.Get(n), m))
		moved = math.Max(moved, r2.Norm(m))
	}

	for i, p := range e.opts.PostProcessing {
		if err := p.Process(c); err != nil {
			return 0, fmt.Errorf("post-processing step %d: %w", i, err)
		}
	}
	return moved, nil
}

// Clip rescales f to at most limit, preserving its direction. Near-zero
// forces and limits yield no movement.
func Clip(f geom.Vec, limit float64) geom.Vec {
	norm := r2.Norm(f)
	if norm <= geom.Epsilon || limit <= geom.Epsilon || math.IsNaN(norm) {
		return geom.Vec{}
	}
	if norm <= limit {
		return f
	}
	return r2.Scale(limit/norm, f)
}

// Close releases the engine's locator.
func (e *Engine) Close() error {
	return e.loc.Close()
}
