package io

import (
	"strconv"

	"github.com/matzehuels/impred/pkg/graph"
)

// Document is a graph plus the string identifiers its nodes carry in
// serialized form.
type Document struct {
	Graph *graph.Graph

	ids   map[graph.Node]string
	nodes map[string]graph.Node
}

// NewDocument wraps g. A nil g starts an empty graph.
func NewDocument(g *graph.Graph) *Document {
	if g == nil {
		g = graph.New()
	}
	return &Document{
		Graph: g,
		ids:   make(map[graph.Node]string),
		nodes: make(map[string]graph.Node),
	}
}

// Node returns the node registered under id.
func (d *Document) Node(id string) (graph.Node, bool) {
	n, ok := d.nodes[id]
	if ok && !d.Graph.HasNode(n) {
		return 0, false
	}
	return n, ok
}

// SetID registers id for n, replacing any previous identifier of n.
func (d *Document) SetID(n graph.Node, id string) {
	if old, ok := d.ids[n]; ok {
		delete(d.nodes, old)
	}
	d.ids[n] = id
	d.nodes[id] = n
}

// ID returns the identifier of n, generating and registering one if n has
// none yet.
func (d *Document) ID(n graph.Node) string {
	if id, ok := d.ids[n]; ok {
		return id
	}
	id := "n" + strconv.Itoa(int(n))
	for {
		if _, taken := d.Node(id); !taken {
			break
		}
		id += "_"
	}
	d.SetID(n, id)
	return id
}
