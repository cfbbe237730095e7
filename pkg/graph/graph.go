package graph

import (
	"errors"
	"slices"
)

var (
	// ErrUnknownNode is returned when a node handle does not belong to the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned when an edge handle does not belong to the graph.
	ErrUnknownEdge = errors.New("unknown edge")
)

// Node is an opaque node handle. Handles increase monotonically and are
// never reused by the graph that issued them.
type Node int

// Edge is an opaque edge handle.
type Edge int

// Element is the constraint satisfied by node and edge handles.
type Element interface {
	Node | Edge
}

type edgeEntry struct {
	source, target Node
}

// Listener receives structural change notifications.
type Listener interface {
	NodeAdded(n Node)
	NodeRemoved(n Node)
	EdgeAdded(e Edge)
	EdgeRemoved(e Edge)
}

// NoopListener implements Listener with no-ops. Embed it to override only
// the callbacks of interest.
type NoopListener struct{}

func (NoopListener) NodeAdded(Node)   {}
func (NoopListener) NodeRemoved(Node) {}
func (NoopListener) EdgeAdded(Edge)   {}
func (NoopListener) EdgeRemoved(Edge) {}

// attributeStore is implemented by every Attribute so the graph can drop
// values of removed elements.
type attributeStore interface {
	dropNode(n Node)
	dropEdge(e Edge)
}

// Graph is an attributed multigraph with change notification.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nextNode Node
	nextEdge Edge

	nodes    []Node // ascending
	edges    []Edge // ascending
	incident map[Node][]Edge
	ends     map[Edge]edgeEntry

	attrs     map[string]attributeStore
	listeners map[int]Listener
	nextSub   int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		incident:  make(map[Node][]Edge),
		ends:      make(map[Edge]edgeEntry),
		attrs:     make(map[string]attributeStore),
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l for structural change notifications and returns a
// function that unregisters it.
func (g *Graph) Subscribe(l Listener) (unsubscribe func()) {
	id := g.nextSub
	g.nextSub++
	g.listeners[id] = l
	return func() { delete(g.listeners, id) }
}

func (g *Graph) notify(fn func(Listener)) {
	ids := make([]int, 0, len(g.listeners))
	for id := range g.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if l, ok := g.listeners[id]; ok {
			fn(l)
		}
	}
}

// AddNode creates a new node and returns its handle.
func (g *Graph) AddNode() Node {
	n := g.nextNode
	g.nextNode++
	g.nodes = append(g.nodes, n)
	g.incident[n] = nil
	g.notify(func(l Listener) { l.NodeAdded(n) })
	return n
}

// AddEdge adds an edge from source to target. Returns ErrUnknownNode if
// either endpoint does not exist. Self-loops and parallel edges are allowed.
func (g *Graph) AddEdge(source, target Node) (Edge, error) {
	if !g.HasNode(source) || !g.HasNode(target) {
		return 0, ErrUnknownNode
	}
	e := g.nextEdge
	g.nextEdge++
	g.edges = append(g.edges, e)
	g.ends[e] = edgeEntry{source: source, target: target}
	g.incident[source] = append(g.incident[source], e)
	if target != source {
		g.incident[target] = append(g.incident[target], e)
	}
	g.notify(func(l Listener) { l.EdgeAdded(e) })
	return e, nil
}

// RemoveEdge removes e. Returns ErrUnknownEdge if e does not exist.
func (g *Graph) RemoveEdge(e Edge) error {
	ends, ok := g.ends[e]
	if !ok {
		return ErrUnknownEdge
	}
	delete(g.ends, e)
	g.edges = removeSorted(g.edges, e)
	drop := func(s Edge) bool { return s == e }
	g.incident[ends.source] = slices.DeleteFunc(g.incident[ends.source], drop)
	g.incident[ends.target] = slices.DeleteFunc(g.incident[ends.target], drop)
	for _, a := range g.attrs {
		a.dropEdge(e)
	}
	g.notify(func(l Listener) { l.EdgeRemoved(e) })
	return nil
}

// RemoveNode removes n together with its incident edges.
// Returns ErrUnknownNode if n does not exist.
func (g *Graph) RemoveNode(n Node) error {
	if !g.HasNode(n) {
		return ErrUnknownNode
	}
	for _, e := range slices.Clone(g.incident[n]) {
		_ = g.RemoveEdge(e)
	}
	delete(g.incident, n)
	g.nodes = removeSorted(g.nodes, n)
	for _, a := range g.attrs {
		a.dropNode(n)
	}
	g.notify(func(l Listener) { l.NodeRemoved(n) })
	return nil
}

func removeSorted[K Element](s []K, k K) []K {
	if i, found := slices.BinarySearch(s, k); found {
		return slices.Delete(s, i, i+1)
	}
	return s
}

// HasNode reports whether n belongs to the graph.
func (g *Graph) HasNode(n Node) bool {
	_, ok := g.incident[n]
	return ok
}

// HasEdge reports whether e belongs to the graph.
func (g *Graph) HasEdge(e Edge) bool {
	_, ok := g.ends[e]
	return ok
}

// Nodes returns all nodes in ascending handle order.
// The returned slice is a copy and may be modified.
func (g *Graph) Nodes() []Node { return slices.Clone(g.nodes) }

// Edges returns all edges in ascending handle order.
// The returned slice is a copy and may be modified.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Source returns the source node of e. Unknown edges yield node 0 and
// false.
func (g *Graph) Source(e Edge) (Node, bool) {
	ends, ok := g.ends[e]
	return ends.source, ok
}

// Target returns the target node of e.
func (g *Graph) Target(e Edge) (Node, bool) {
	ends, ok := g.ends[e]
	return ends.target, ok
}

// Ends returns both endpoints of e.
func (g *Graph) Ends(e Edge) (source, target Node, ok bool) {
	ends, ok := g.ends[e]
	return ends.source, ends.target, ok
}

// Opposite returns the endpoint of e that is not n. For a self-loop it
// returns n itself.
func (g *Graph) Opposite(e Edge, n Node) (Node, bool) {
	ends, ok := g.ends[e]
	switch {
	case !ok:
		return 0, false
	case ends.source == n:
		return ends.target, true
	case ends.target == n:
		return ends.source, true
	}
	return 0, false
}

// IsIncident reports whether n is an endpoint of e.
func (g *Graph) IsIncident(e Edge, n Node) bool {
	ends, ok := g.ends[e]
	return ok && (ends.source == n || ends.target == n)
}

// Incident returns the edges having n as an endpoint, each listed once.
// The returned slice should not be modified.
func (g *Graph) Incident(n Node) []Edge { return g.incident[n] }

// OutEdges returns the edges whose source is n.
func (g *Graph) OutEdges(n Node) []Edge {
	var out []Edge
	for _, e := range g.incident[n] {
		if g.ends[e].source == n {
			out = append(out, e)
		}
	}
	return out
}

// InEdges returns the edges whose target is n.
func (g *Graph) InEdges(n Node) []Edge {
	var in []Edge
	for _, e := range g.incident[n] {
		if g.ends[e].target == n {
			in = append(in, e)
		}
	}
	return in
}

// Degree returns the number of edge endpoints at n. A self-loop counts twice.
func (g *Graph) Degree(n Node) int {
	d := 0
	for _, e := range g.incident[n] {
		d++
		if ends := g.ends[e]; ends.source == ends.target {
			d++
		}
	}
	return d
}

// Neighbors returns the distinct nodes adjacent to n, in ascending order.
func (g *Graph) Neighbors(n Node) []Node {
	var out []Node
	for _, e := range g.incident[n] {
		m, _ := g.Opposite(e, n)
		out = append(out, m)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
