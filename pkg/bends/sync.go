package bends

import (
	"errors"
	"slices"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
)

var (
	// ErrNotSegment is returned when an edge is not a mirror segment.
	ErrNotSegment = errors.New("not a mirror segment")

	// ErrNotBend is returned when a node is not a bend node.
	ErrNotBend = errors.New("not a bend node")
)

// Options selects the attributes of the original graph that are mirrored.
type Options struct {
	// PositionKey names the original node position attribute.
	// Defaults to graph.KeyPosition.
	PositionKey string

	// ControlPointsKey names the original edge control point attribute.
	// Defaults to graph.KeyControlPoints.
	ControlPointsKey string
}

// Sync mirrors an original graph into a bend-explicit graph.
//
// The mirror uses the well-known position and size attributes regardless of
// the keys read from the original.
type Sync struct {
	orig     *graph.Graph
	origPos  *graph.Attribute[graph.Node, geom.Vec]
	origSize *graph.Attribute[graph.Node, geom.Vec]
	origCtrl *graph.Attribute[graph.Edge, []geom.Vec]

	mirror *graph.Graph
	pos    *graph.Attribute[graph.Node, geom.Vec]
	size   *graph.Attribute[graph.Node, geom.Vec]

	toMirror   map[graph.Node]graph.Node
	fromMirror map[graph.Node]graph.Node
	chains     map[graph.Edge][]graph.Edge
	segOrigin  map[graph.Edge]graph.Edge
	bendOrigin map[graph.Node]graph.Edge
}

// New creates a synchronizer for original and performs an initial Push.
func New(original *graph.Graph, opts Options) *Sync {
	if opts.PositionKey == "" {
		opts.PositionKey = graph.KeyPosition
	}
	if opts.ControlPointsKey == "" {
		opts.ControlPointsKey = graph.KeyControlPoints
	}
	mirror := graph.New()
	s := &Sync{
		orig:       original,
		origPos:    graph.NodeAttribute(original, opts.PositionKey, geom.Vec{}),
		origSize:   graph.Sizes(original),
		origCtrl:   graph.EdgeAttribute[[]geom.Vec](original, opts.ControlPointsKey, nil),
		mirror:     mirror,
		pos:        graph.Positions(mirror),
		size:       graph.Sizes(mirror),
		toMirror:   make(map[graph.Node]graph.Node),
		fromMirror: make(map[graph.Node]graph.Node),
		chains:     make(map[graph.Edge][]graph.Edge),
		segOrigin:  make(map[graph.Edge]graph.Edge),
		bendOrigin: make(map[graph.Node]graph.Edge),
	}
	s.Push()
	return s
}

// Original returns the original graph.
func (s *Sync) Original() *graph.Graph { return s.orig }

// Mirror returns the bend-explicit mirror graph.
func (s *Sync) Mirror() *graph.Graph { return s.mirror }

// Push brings the mirror up to date with the original: it adds and removes
// mirrored elements, copies positions and sizes, and places bend nodes on
// the control points. A chain is rebuilt when its edge's control point
// count no longer matches its bend count.
func (s *Sync) Push() {
	for e := range s.chains {
		if !s.orig.HasEdge(e) {
			s.dropChain(e)
		}
	}
	for n, m := range s.toMirror {
		if !s.orig.HasNode(n) {
			_ = s.mirror.RemoveNode(m)
			delete(s.toMirror, n)
			delete(s.fromMirror, m)
		}
	}

	for _, n := range s.orig.Nodes() {
		m, ok := s.toMirror[n]
		if !ok {
			m = s.mirror.AddNode()
			s.toMirror[n] = m
			s.fromMirror[m] = n
		}
		setIfChanged(s.pos, m, s.origPos.Get(n))
		setIfChanged(s.size, m, s.origSize.Get(n))
	}

	for _, e := range s.orig.Edges() {
		ctrl := s.origCtrl.Get(e)
		chain, ok := s.chains[e]
		if ok && len(chain)-1 != len(ctrl) {
			s.dropChain(e)
			ok = false
		}
		if !ok {
			s.buildChain(e, ctrl)
			continue
		}
		for i, seg := range chain[1:] {
			b, _ := s.mirror.Source(seg)
			setIfChanged(s.pos, b, ctrl[i])
		}
	}
}

func setIfChanged(a *graph.Attribute[graph.Node, geom.Vec], n graph.Node, v geom.Vec) {
	if a.Get(n) != v {
		a.Set(n, v)
	}
}

func (s *Sync) buildChain(e graph.Edge, ctrl []geom.Vec) {
	src, tgt, _ := s.orig.Ends(e)
	prev := s.toMirror[src]
	chain := make([]graph.Edge, 0, len(ctrl)+1)
	for _, p := range ctrl {
		b := s.mirror.AddNode()
		s.pos.Set(b, p)
		s.bendOrigin[b] = e
		seg, _ := s.mirror.AddEdge(prev, b)
		s.segOrigin[seg] = e
		chain = append(chain, seg)
		prev = b
	}
	seg, _ := s.mirror.AddEdge(prev, s.toMirror[tgt])
	s.segOrigin[seg] = e
	s.chains[e] = append(chain, seg)
}

func (s *Sync) dropChain(e graph.Edge) {
	for _, seg := range s.chains[e] {
		delete(s.segOrigin, seg)
		_ = s.mirror.RemoveEdge(seg)
	}
	for b, origin := range s.bendOrigin {
		if origin == e {
			delete(s.bendOrigin, b)
			_ = s.mirror.RemoveNode(b)
		}
	}
	delete(s.chains, e)
}

// Pull writes mirror positions back to the original nodes and rebuilds the
// control points of every edge from its bend nodes. Position writes on the
// original are batched into a single notification.
func (s *Sync) Pull() {
	s.origPos.BeginBatch()
	defer s.origPos.EndBatch()
	s.origCtrl.BeginBatch()
	defer s.origCtrl.EndBatch()

	for n, m := range s.toMirror {
		if p := s.pos.Get(m); s.origPos.Get(n) != p {
			s.origPos.Set(n, p)
		}
	}
	for e := range s.chains {
		bends := s.bendPositions(e)
		switch {
		case len(bends) == 0 && s.origCtrl.IsSet(e):
			s.origCtrl.Reset(e)
		case len(bends) > 0 && !slices.Equal(bends, s.origCtrl.Get(e)):
			s.origCtrl.Set(e, bends)
		}
	}
}

func (s *Sync) bendPositions(e graph.Edge) []geom.Vec {
	chain := s.chains[e]
	if len(chain) < 2 {
		return nil
	}
	out := make([]geom.Vec, 0, len(chain)-1)
	for _, seg := range chain[1:] {
		b, _ := s.mirror.Source(seg)
		out = append(out, s.pos.Get(b))
	}
	return out
}

// MirrorNode returns the mirror node of an original node.
func (s *Sync) MirrorNode(n graph.Node) (graph.Node, bool) {
	m, ok := s.toMirror[n]
	return m, ok
}

// OriginNode returns the original node of a mirror node. Bend nodes have
// no original node.
func (s *Sync) OriginNode(m graph.Node) (graph.Node, bool) {
	n, ok := s.fromMirror[m]
	return n, ok
}

// Origin returns the original edge a mirror segment belongs to.
func (s *Sync) Origin(seg graph.Edge) (graph.Edge, bool) {
	e, ok := s.segOrigin[seg]
	return e, ok
}

// BendOrigin returns the original edge a bend node belongs to.
func (s *Sync) BendOrigin(b graph.Node) (graph.Edge, bool) {
	e, ok := s.bendOrigin[b]
	return e, ok
}

// IsBend reports whether m is a bend node.
func (s *Sync) IsBend(m graph.Node) bool {
	_, ok := s.bendOrigin[m]
	return ok
}

// PartOf reports whether the mirror segment seg is part of the expansion
// of the original edge e.
func (s *Sync) PartOf(e, seg graph.Edge) bool {
	origin, ok := s.segOrigin[seg]
	return ok && origin == e
}

// Chain returns the segments of e from source to target.
// The returned slice is a copy.
func (s *Sync) Chain(e graph.Edge) []graph.Edge {
	return slices.Clone(s.chains[e])
}

// ChainNodes returns the mirror nodes along e: source, bends in order,
// target.
func (s *Sync) ChainNodes(e graph.Edge) []graph.Node {
	chain := s.chains[e]
	if len(chain) == 0 {
		return nil
	}
	first, _ := s.mirror.Source(chain[0])
	nodes := []graph.Node{first}
	for _, seg := range chain {
		t, _ := s.mirror.Target(seg)
		nodes = append(nodes, t)
	}
	return nodes
}

// OriginalEdges returns the original edges with a chain, in ascending order.
func (s *Sync) OriginalEdges() []graph.Edge {
	out := make([]graph.Edge, 0, len(s.chains))
	for e := range s.chains {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}
