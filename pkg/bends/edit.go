package bends

import (
	"slices"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
)

// InsertBend splits seg at point at, inserting a new bend node. It returns
// the two segments replacing seg, in chain order.
func (s *Sync) InsertBend(seg graph.Edge, at geom.Vec) (first, second graph.Edge, err error) {
	e, ok := s.segOrigin[seg]
	if !ok {
		return 0, 0, ErrNotSegment
	}
	src, tgt, _ := s.mirror.Ends(seg)
	chain := s.chains[e]
	i := slices.Index(chain, seg)

	b := s.mirror.AddNode()
	s.pos.Set(b, at)
	s.bendOrigin[b] = e
	first, _ = s.mirror.AddEdge(src, b)
	second, _ = s.mirror.AddEdge(b, tgt)
	_ = s.mirror.RemoveEdge(seg)
	delete(s.segOrigin, seg)
	s.segOrigin[first] = e
	s.segOrigin[second] = e

	s.chains[e] = slices.Replace(chain, i, i+1, first, second)
	return first, second, nil
}

// InsertBendMidpoint splits seg at its midpoint.
func (s *Sync) InsertBendMidpoint(seg graph.Edge) (first, second graph.Edge, err error) {
	src, tgt, ok := s.mirror.Ends(seg)
	if !ok {
		return 0, 0, ErrNotSegment
	}
	return s.InsertBend(seg, geom.Midpoint(s.pos.Get(src), s.pos.Get(tgt)))
}

// RemoveBend removes bend node b and merges its two segments. It returns
// the merged segment.
func (s *Sync) RemoveBend(b graph.Node) (graph.Edge, error) {
	e, ok := s.bendOrigin[b]
	if !ok {
		return 0, ErrNotBend
	}
	chain := s.chains[e]
	i := slices.IndexFunc(chain, func(seg graph.Edge) bool {
		t, _ := s.mirror.Target(seg)
		return t == b
	})
	in, out := chain[i], chain[i+1]
	src, _ := s.mirror.Source(in)
	tgt, _ := s.mirror.Target(out)

	merged, _ := s.mirror.AddEdge(src, tgt)
	delete(s.segOrigin, in)
	delete(s.segOrigin, out)
	delete(s.bendOrigin, b)
	_ = s.mirror.RemoveNode(b)
	s.segOrigin[merged] = e

	s.chains[e] = slices.Replace(chain, i, i+2, merged)
	return merged, nil
}
