package impred

import (
	"math"

	"github.com/matzehuels/impred/pkg/bends"
	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/locator"
)

// SafetyFactor scales a constraint cap before it limits a movement, so
// nodes stop short of the boundary the cap describes.
const SafetyFactor = 0.9

// Forces maps mirror nodes to force vectors.
type Forces map[graph.Node]geom.Vec

// Add accumulates v onto n.
func (f Forces) Add(n graph.Node, v geom.Vec) {
	f[n] = geom.Vec{X: f[n].X + v.X, Y: f[n].Y + v.Y}
}

// Caps is the output of a constraint term: a cap per node and a default
// applying to every node.
type Caps struct {
	Default float64
	Nodes   map[graph.Node]float64
}

// NewCaps returns caps that restrict nothing.
func NewCaps() Caps {
	return Caps{Default: math.Inf(1), Nodes: make(map[graph.Node]float64)}
}

// Lower caps n at c unless it is already capped lower.
func (c Caps) Lower(n graph.Node, v float64) {
	if old, ok := c.Nodes[n]; !ok || v < old {
		c.Nodes[n] = v
	}
}

// Context is the per-iteration state shared by all terms. Terms read the
// mirror graph, positions, temperature and the accumulators filled by
// earlier phases; only pre-movement steps write movements.
type Context struct {
	engine *Engine

	// Graph is the bend-explicit mirror graph the engine moves.
	Graph *graph.Graph
	// Sync maps between the mirror and the original graph.
	Sync *bends.Sync
	// Locator indexes the mirror graph; rebuilt at the start of every
	// iteration.
	Locator *locator.Locator

	// Positions and Sizes are the mirror's node attributes.
	Positions *graph.Attribute[graph.Node, geom.Vec]
	Sizes     *graph.Attribute[graph.Node, geom.Vec]

	// Temperature of the current iteration, in [0, 1].
	Temperature float64
	// Iteration is the zero-based index within the planned run.
	Iteration int

	force      map[graph.Node]geom.Vec
	constraint map[graph.Node]float64
	defaultCap float64
	movement   map[graph.Node]geom.Vec
}

func (c *Context) reset() {
	clear(c.force)
	clear(c.constraint)
	clear(c.movement)
	c.defaultCap = math.Inf(1)
	for _, n := range c.Graph.Nodes() {
		c.force[n] = geom.Vec{}
		c.constraint[n] = math.Inf(1)
	}
}

// Engine returns the engine running this iteration.
func (c *Context) Engine() *Engine { return c.engine }

// Position returns the current position of mirror node n.
func (c *Context) Position(n graph.Node) geom.Vec { return c.Positions.Get(n) }

// Size returns the size of mirror node n.
func (c *Context) Size(n graph.Node) geom.Vec { return c.Sizes.Get(n) }

// Force returns the summed force on n. It is complete once the force
// phase has finished.
func (c *Context) Force(n graph.Node) geom.Vec { return c.force[n] }

// Constraint returns n's effective cap: the minimum of its own cap and
// the default.
func (c *Context) Constraint(n graph.Node) float64 {
	v, ok := c.constraint[n]
	if !ok {
		v = math.Inf(1)
	}
	return math.Min(v, c.defaultCap)
}

// NodeConstraint returns the cap set specifically for n, ignoring the
// default. ok is false when no term capped n.
func (c *Context) NodeConstraint(n graph.Node) (v float64, ok bool) {
	v, ok = c.constraint[n]
	if ok && math.IsInf(v, 1) {
		return v, false
	}
	return v, ok
}

// DefaultConstraint returns the cap applying to every node.
func (c *Context) DefaultConstraint() float64 { return c.defaultCap }

// Movement returns the movement planned for n.
func (c *Context) Movement(n graph.Node) geom.Vec { return c.movement[n] }

// SetMovement replaces the movement planned for n.
func (c *Context) SetMovement(n graph.Node, v geom.Vec) { c.movement[n] = v }

// MirrorNodes translates original nodes to mirror nodes, skipping unknown
// ones. A nil slice selects the mirror of every original node; bend nodes
// are never included.
func (c *Context) MirrorNodes(nodes []graph.Node) []graph.Node {
	if nodes == nil {
		nodes = c.Sync.Original().Nodes()
	}
	out := make([]graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if m, ok := c.Sync.MirrorNode(n); ok {
			out = append(out, m)
		}
	}
	return out
}

// Segments expands original edges into their mirror segments. A nil slice
// selects every mirror edge.
func (c *Context) Segments(edges []graph.Edge) []graph.Edge {
	if edges == nil {
		return c.Graph.Edges()
	}
	var out []graph.Edge
	for _, e := range edges {
		out = append(out, c.Sync.Chain(e)...)
	}
	return out
}

// Endpoints returns the positions of the ends of mirror edge e.
func (c *Context) Endpoints(e graph.Edge) (s, t graph.Node, ps, pt geom.Vec) {
	s, t, _ = c.Graph.Ends(e)
	return s, t, c.Positions.Get(s), c.Positions.Get(t)
}

// Footprint returns half the diagonal of n's size, the radius of the
// circle enclosing the node.
func (c *Context) Footprint(n graph.Node) float64 {
	sz := c.Sizes.Get(n)
	return math.Hypot(sz.X, sz.Y) / 2
}
