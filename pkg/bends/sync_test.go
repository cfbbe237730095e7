package bends

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
)

func curvedGraph(t *testing.T) (*graph.Graph, graph.Edge, graph.Edge) {
	t.Helper()
	g := graph.New()
	a, b := g.AddNode(), g.AddNode()
	pos := graph.Positions(g)
	pos.Set(a, geom.Vec{X: 0, Y: 0})
	pos.Set(b, geom.Vec{X: 10, Y: 0})
	straight, _ := g.AddEdge(a, b)
	curved, _ := g.AddEdge(a, b)
	graph.ControlPoints(g).Set(curved, []geom.Vec{{X: 3, Y: 5}, {X: 7, Y: 5}})
	return g, straight, curved
}

func TestPushBuildsChains(t *testing.T) {
	g, straight, curved := curvedGraph(t)
	s := New(g, Options{})
	m := s.Mirror()

	if m.NodeCount() != 4 || m.EdgeCount() != 4 {
		t.Fatalf("mirror has %d nodes / %d edges, want 4/4", m.NodeCount(), m.EdgeCount())
	}
	if got := len(s.Chain(straight)); got != 1 {
		t.Errorf("straight chain length = %d, want 1", got)
	}

	nodes := s.ChainNodes(curved)
	if len(nodes) != 4 {
		t.Fatalf("curved chain nodes = %v", nodes)
	}
	want := []geom.Vec{{X: 0}, {X: 3, Y: 5}, {X: 7, Y: 5}, {X: 10}}
	pos := graph.Positions(m)
	for i, n := range nodes {
		if got := pos.Get(n); !geom.EqVec(got, want[i]) {
			t.Errorf("chain node %d at %v, want %v", i, got, want[i])
		}
	}
	if !s.IsBend(nodes[1]) || s.IsBend(nodes[0]) {
		t.Error("IsBend wrong")
	}
	if _, ok := s.OriginNode(nodes[1]); ok {
		t.Error("bend node has an original node")
	}
	for _, seg := range s.Chain(curved) {
		if !s.PartOf(curved, seg) || s.PartOf(straight, seg) {
			t.Errorf("PartOf wrong for segment %d", seg)
		}
	}
}

func TestSelfLoopBox(t *testing.T) {
	g := graph.New()
	n := g.AddNode()
	loop, _ := g.AddEdge(n, n)
	graph.ControlPoints(g).Set(loop, []geom.Vec{{X: 10}, {X: 10, Y: 10}, {Y: 10}})

	s := New(g, Options{})
	chain := s.Chain(loop)
	if len(chain) != 4 {
		t.Fatalf("self-loop chain has %d segments, want 4", len(chain))
	}
	nodes := s.ChainNodes(loop)
	if nodes[0] != nodes[len(nodes)-1] {
		t.Errorf("self-loop chain not closed: %v", nodes)
	}
}

func TestPullRebuildsControlPoints(t *testing.T) {
	g, _, curved := curvedGraph(t)
	s := New(g, Options{})
	pos := graph.Positions(s.Mirror())

	nodes := s.ChainNodes(curved)
	pos.Set(nodes[0], geom.Vec{X: -1, Y: -1})
	pos.Set(nodes[1], geom.Vec{X: 4, Y: 6})

	var notified int
	graph.Positions(g).Subscribe(graph.ListenerFuncs[graph.Node]{
		OnUpdate: func([]graph.Node) { notified++ },
	})
	s.Pull()

	origin, _ := s.OriginNode(nodes[0])
	if got := graph.Positions(g).Get(origin); !geom.EqVec(got, geom.Vec{X: -1, Y: -1}) {
		t.Errorf("original position = %v", got)
	}
	ctrl := graph.ControlPoints(g).Get(curved)
	if !slices.Equal(ctrl, []geom.Vec{{X: 4, Y: 6}, {X: 7, Y: 5}}) {
		t.Errorf("control points = %v", ctrl)
	}
	if notified != 1 {
		t.Errorf("position notifications = %d, want 1", notified)
	}
}

func TestInsertAndRemoveBend(t *testing.T) {
	g, straight, _ := curvedGraph(t)
	s := New(g, Options{})
	seg := s.Chain(straight)[0]

	first, second, err := s.InsertBendMidpoint(seg)
	if err != nil {
		t.Fatalf("InsertBendMidpoint: %v", err)
	}
	if got := s.Chain(straight); !slices.Equal(got, []graph.Edge{first, second}) {
		t.Fatalf("chain = %v, want [%d %d]", got, first, second)
	}
	if s.Mirror().HasEdge(seg) {
		t.Error("split segment still present")
	}
	bend, _ := s.Mirror().Target(first)
	if got := graph.Positions(s.Mirror()).Get(bend); !geom.EqVec(got, geom.Vec{X: 5}) {
		t.Errorf("bend at %v, want (5,0)", got)
	}
	if e, ok := s.Origin(second); !ok || e != straight {
		t.Errorf("Origin(second) = %d, %v", e, ok)
	}

	s.Pull()
	if got := graph.ControlPoints(g).Get(straight); !slices.Equal(got, []geom.Vec{{X: 5}}) {
		t.Errorf("pulled control points = %v", got)
	}

	merged, err := s.RemoveBend(bend)
	if err != nil {
		t.Fatalf("RemoveBend: %v", err)
	}
	if got := s.Chain(straight); !slices.Equal(got, []graph.Edge{merged}) {
		t.Errorf("chain after removal = %v", got)
	}
	s.Pull()
	if graph.ControlPoints(g).IsSet(straight) {
		t.Error("control points not cleared after removing the last bend")
	}
}

func TestEditErrors(t *testing.T) {
	g, straight, _ := curvedGraph(t)
	s := New(g, Options{})
	endpoint := s.ChainNodes(straight)[0]

	if _, err := s.RemoveBend(endpoint); !errors.Is(err, ErrNotBend) {
		t.Errorf("RemoveBend(endpoint) err = %v", err)
	}
	if _, _, err := s.InsertBend(999, geom.Vec{}); !errors.Is(err, ErrNotSegment) {
		t.Errorf("InsertBend(unknown) err = %v", err)
	}
}

func TestPushFollowsOriginalChanges(t *testing.T) {
	g, straight, curved := curvedGraph(t)
	s := New(g, Options{})

	graph.ControlPoints(g).Set(straight, []geom.Vec{{X: 5, Y: -5}})
	c := g.AddNode()
	_ = g.RemoveEdge(curved)
	s.Push()

	if len(s.Chain(straight)) != 2 {
		t.Errorf("straight edge chain not rebuilt: %v", s.Chain(straight))
	}
	if len(s.Chain(curved)) != 0 {
		t.Error("removed edge still mirrored")
	}
	if _, ok := s.MirrorNode(c); !ok {
		t.Error("new node not mirrored")
	}
	if got := s.Mirror().NodeCount(); got != 4 {
		t.Errorf("mirror nodes = %d, want 4 (3 nodes + 1 bend)", got)
	}
}
