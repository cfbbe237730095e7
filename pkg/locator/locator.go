package locator

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/impred/pkg/errors"
	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
)

// Mode selects how box queries match elements.
type Mode int

const (
	// Partial matches elements overlapping the box.
	Partial Mode = iota
	// Inside matches elements inside the box. It currently returns the
	// same result as Partial.
	Inside
)

// maxCells bounds the cells a single element may occupy. Elements with a
// larger or non-finite bounding box are parked in the overflow set and
// returned by every query.
const maxCells = 1 << 16

// Options configures a Locator.
type Options struct {
	// CellSize is the side length of a grid cell. Zero derives it from the
	// graph extent as max(1, extent/100).
	CellSize float64

	// Padding grows every element's bounding box on insertion.
	Padding float64

	// ControlPoints, when set, extends edge bounding boxes with the edge's
	// control points.
	ControlPoints *graph.Attribute[graph.Edge, []geom.Vec]
}

type cell struct{ i, j int }

type span struct{ i0, j0, i1, j1 int }

type bucket struct {
	nodes map[graph.Node]struct{}
	edges map[graph.Edge]struct{}
}

// Locator is a bucket grid over a graph's nodes and edges.
type Locator struct {
	g    *graph.Graph
	pos  *graph.Attribute[graph.Node, geom.Vec]
	size *graph.Attribute[graph.Node, geom.Vec]
	opts Options

	cellSize float64
	buckets  map[cell]*bucket

	nodeSpans map[graph.Node]span
	edgeSpans map[graph.Edge]span

	overflowNodes map[graph.Node]struct{}
	overflowEdges map[graph.Edge]struct{}

	unsubscribe []func()
}

// New creates a locator over g and indexes all of its elements. pos is
// required; size may be nil, in which case nodes are points.
func New(g *graph.Graph, pos, size *graph.Attribute[graph.Node, geom.Vec], opts Options) (*Locator, error) {
	if err := errors.ValidateCellSize(opts.CellSize); err != nil {
		return nil, err
	}
	if err := errors.ValidateNonNegative("padding", opts.Padding); err != nil {
		return nil, err
	}
	l := &Locator{
		g:    g,
		pos:  pos,
		size: size,
		opts: opts,
	}
	l.cellSize = opts.CellSize
	if l.cellSize == 0 {
		l.cellSize = l.derivedCellSize()
	}
	l.Rebuild()
	return l, nil
}

// CellSize returns the side length of the grid cells.
func (l *Locator) CellSize() float64 { return l.cellSize }

func (l *Locator) derivedCellSize() float64 {
	nodes := l.g.Nodes()
	if len(nodes) == 0 {
		return 1
	}
	b := l.nodeBox(nodes[0])
	for _, n := range nodes[1:] {
		b = geom.Union(b, l.nodeBox(n))
	}
	w, h := geom.Extent(b)
	return max(1, max(w, h)/100)
}

// Rebuild discards the grid and re-indexes every element.
func (l *Locator) Rebuild() {
	l.buckets = make(map[cell]*bucket)
	l.nodeSpans = make(map[graph.Node]span)
	l.edgeSpans = make(map[graph.Edge]span)
	l.overflowNodes = make(map[graph.Node]struct{})
	l.overflowEdges = make(map[graph.Edge]struct{})
	for _, n := range l.g.Nodes() {
		l.insertNode(n)
	}
	for _, e := range l.g.Edges() {
		l.insertEdge(e)
	}
}

func (l *Locator) nodeBox(n graph.Node) geom.Box {
	var size geom.Vec
	if l.size != nil {
		size = l.size.Get(n)
	}
	return geom.BoxAround(l.pos.Get(n), size)
}

func (l *Locator) edgeBox(e graph.Edge) geom.Box {
	s, t, _ := l.g.Ends(e)
	b := geom.BoxOf(l.pos.Get(s), l.pos.Get(t))
	if l.opts.ControlPoints != nil {
		for _, p := range l.opts.ControlPoints.Get(e) {
			b = geom.Include(b, p)
		}
	}
	return b
}

// spanOf maps a box to its inclusive cell range. ok is false when the
// range is not finite or too large to enumerate.
func (l *Locator) spanOf(b geom.Box) (span, bool) {
	fi0 := math.Floor(b.Min.X / l.cellSize)
	fj0 := math.Floor(b.Min.Y / l.cellSize)
	fi1 := math.Floor(b.Max.X / l.cellSize)
	fj1 := math.Floor(b.Max.Y / l.cellSize)
	for _, f := range []float64{fi0, fj0, fi1, fj1} {
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return span{}, false
		}
	}
	if (fi1-fi0+1)*(fj1-fj0+1) > maxCells {
		return span{}, false
	}
	return span{int(fi0), int(fj0), int(fi1), int(fj1)}, true
}

func (s span) each(fn func(c cell)) {
	for i := s.i0; i <= s.i1; i++ {
		for j := s.j0; j <= s.j1; j++ {
			fn(cell{i, j})
		}
	}
}

func (s span) contains(c cell) bool {
	return c.i >= s.i0 && c.i <= s.i1 && c.j >= s.j0 && c.j <= s.j1
}

func (l *Locator) bucketAt(c cell) *bucket {
	b, ok := l.buckets[c]
	if !ok {
		b = &bucket{
			nodes: make(map[graph.Node]struct{}),
			edges: make(map[graph.Edge]struct{}),
		}
		l.buckets[c] = b
	}
	return b
}

func (l *Locator) insertNode(n graph.Node) {
	sp, ok := l.spanOf(geom.Expand(l.nodeBox(n), l.opts.Padding))
	if !ok {
		l.overflowNodes[n] = struct{}{}
		return
	}
	l.nodeSpans[n] = sp
	sp.each(func(c cell) { l.bucketAt(c).nodes[n] = struct{}{} })
}

func (l *Locator) removeNode(n graph.Node) {
	delete(l.overflowNodes, n)
	sp, ok := l.nodeSpans[n]
	if !ok {
		return
	}
	delete(l.nodeSpans, n)
	sp.each(func(c cell) {
		if b, ok := l.buckets[c]; ok {
			delete(b.nodes, n)
			l.prune(c, b)
		}
	})
}

func (l *Locator) insertEdge(e graph.Edge) {
	sp, ok := l.spanOf(geom.Expand(l.edgeBox(e), l.opts.Padding))
	if !ok {
		l.overflowEdges[e] = struct{}{}
		return
	}
	l.edgeSpans[e] = sp
	sp.each(func(c cell) { l.bucketAt(c).edges[e] = struct{}{} })
}

func (l *Locator) removeEdge(e graph.Edge) {
	delete(l.overflowEdges, e)
	sp, ok := l.edgeSpans[e]
	if !ok {
		return
	}
	delete(l.edgeSpans, e)
	sp.each(func(c cell) {
		if b, ok := l.buckets[c]; ok {
			delete(b.edges, e)
			l.prune(c, b)
		}
	})
}

func (l *Locator) prune(c cell, b *bucket) {
	if len(b.nodes) == 0 && len(b.edges) == 0 {
		delete(l.buckets, c)
	}
}

// visit calls fn for every non-empty bucket whose cell lies in the cell
// range of box. It walks the occupied cells instead of the range when the
// range is larger.
func (l *Locator) visit(box geom.Box, fn func(*bucket)) {
	sp, ok := l.spanOf(box)
	if ok && (sp.i1-sp.i0+1)*(sp.j1-sp.j0+1) <= len(l.buckets) {
		sp.each(func(c cell) {
			if b, ok := l.buckets[c]; ok {
				fn(b)
			}
		})
		return
	}
	if !ok {
		sp = l.unboundedSpan(box)
	}
	for c, b := range l.buckets {
		if sp.contains(c) {
			fn(b)
		}
	}
}

// unboundedSpan clamps a box that does not map to a finite cell range.
func (l *Locator) unboundedSpan(box geom.Box) span {
	clamp := func(v float64) int {
		f := math.Floor(v / l.cellSize)
		switch {
		case math.IsNaN(f):
			return 0
		case f < math.MinInt32:
			return math.MinInt32
		case f > math.MaxInt32:
			return math.MaxInt32
		}
		return int(f)
	}
	if math.IsNaN(box.Min.X) || math.IsNaN(box.Min.Y) || math.IsNaN(box.Max.X) || math.IsNaN(box.Max.Y) {
		return span{math.MinInt32, math.MinInt32, math.MaxInt32, math.MaxInt32}
	}
	return span{clamp(box.Min.X), clamp(box.Min.Y), clamp(box.Max.X), clamp(box.Max.Y)}
}

// NodesInBox returns the nodes registered in the cells covering box, in
// ascending order. Both modes return the same set; see [Inside].
func (l *Locator) NodesInBox(box geom.Box, _ Mode) []graph.Node {
	found := maps.Clone(l.overflowNodes)
	if found == nil {
		found = make(map[graph.Node]struct{})
	}
	l.visit(box, func(b *bucket) {
		for n := range b.nodes {
			found[n] = struct{}{}
		}
	})
	return slices.Sorted(maps.Keys(found))
}

// EdgesInBox returns the edges registered in the cells covering box, in
// ascending order. Both modes return the same set; see [Inside].
func (l *Locator) EdgesInBox(box geom.Box, _ Mode) []graph.Edge {
	found := maps.Clone(l.overflowEdges)
	if found == nil {
		found = make(map[graph.Edge]struct{})
	}
	l.visit(box, func(b *bucket) {
		for e := range b.edges {
			found[e] = struct{}{}
		}
	})
	return slices.Sorted(maps.Keys(found))
}

func around(p geom.Vec, r float64) geom.Box {
	return geom.Expand(geom.Box{Min: p, Max: p}, r)
}

// NodesNear returns a superset of the nodes whose box lies within r of p.
func (l *Locator) NodesNear(p geom.Vec, r float64) []graph.Node {
	return l.NodesInBox(around(p, r), Partial)
}

// NodesNearNode returns a superset of the nodes within r of n's box,
// including n itself.
func (l *Locator) NodesNearNode(n graph.Node, r float64) []graph.Node {
	return l.NodesInBox(geom.Expand(l.nodeBox(n), r), Partial)
}

// NodesNearEdge returns a superset of the nodes within r of e.
func (l *Locator) NodesNearEdge(e graph.Edge, r float64) []graph.Node {
	return l.NodesInBox(geom.Expand(l.edgeBox(e), r), Partial)
}

// EdgesNear returns a superset of the edges within r of p.
func (l *Locator) EdgesNear(p geom.Vec, r float64) []graph.Edge {
	return l.EdgesInBox(around(p, r), Partial)
}

// EdgesNearNode returns a superset of the edges within r of n's box.
func (l *Locator) EdgesNearNode(n graph.Node, r float64) []graph.Edge {
	return l.EdgesInBox(geom.Expand(l.nodeBox(n), r), Partial)
}

// EdgesNearEdge returns a superset of the edges within r of e, including e.
func (l *Locator) EdgesNearEdge(e graph.Edge, r float64) []graph.Edge {
	return l.EdgesInBox(geom.Expand(l.edgeBox(e), r), Partial)
}
