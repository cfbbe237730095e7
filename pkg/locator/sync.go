package locator

import (
	"github.com/matzehuels/impred/pkg/graph"
)

type structureListener struct {
	l *Locator
}

func (s structureListener) NodeAdded(n graph.Node)   { s.l.insertNode(n) }
func (s structureListener) NodeRemoved(n graph.Node) { s.l.removeNode(n) }
func (s structureListener) EdgeAdded(e graph.Edge)   { s.l.insertEdge(e) }
func (s structureListener) EdgeRemoved(e graph.Edge) { s.l.removeEdge(e) }

// AutoSync subscribes the locator to structural changes of the graph and to
// its position, size and control point attributes, re-indexing only the
// elements reported as changed. Calling AutoSync twice is a no-op.
func (l *Locator) AutoSync() {
	if len(l.unsubscribe) > 0 {
		return
	}
	l.unsubscribe = append(l.unsubscribe, l.g.Subscribe(structureListener{l}))

	nodes := graph.ListenerFuncs[graph.Node]{
		OnUpdate:    l.reindexNodes,
		OnUpdateAll: l.Rebuild,
	}
	l.unsubscribe = append(l.unsubscribe, l.pos.Subscribe(nodes))
	if l.size != nil {
		l.unsubscribe = append(l.unsubscribe, l.size.Subscribe(nodes))
	}
	if l.opts.ControlPoints != nil {
		l.unsubscribe = append(l.unsubscribe, l.opts.ControlPoints.Subscribe(graph.ListenerFuncs[graph.Edge]{
			OnUpdate:    l.reindexEdges,
			OnUpdateAll: l.Rebuild,
		}))
	}
}

func (l *Locator) reindexNodes(changed []graph.Node) {
	edges := make(map[graph.Edge]struct{})
	for _, n := range changed {
		if !l.g.HasNode(n) {
			continue
		}
		l.removeNode(n)
		l.insertNode(n)
		for _, e := range l.g.Incident(n) {
			edges[e] = struct{}{}
		}
	}
	for e := range edges {
		l.removeEdge(e)
		l.insertEdge(e)
	}
}

func (l *Locator) reindexEdges(changed []graph.Edge) {
	for _, e := range changed {
		if !l.g.HasEdge(e) {
			continue
		}
		l.removeEdge(e)
		l.insertEdge(e)
	}
}

// Close releases all AutoSync subscriptions. The locator remains usable
// with manual Rebuild calls.
func (l *Locator) Close() error {
	for _, fn := range l.unsubscribe {
		fn()
	}
	l.unsubscribe = nil
	return nil
}
