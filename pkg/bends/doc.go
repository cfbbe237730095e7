// Package bends maintains a bend-explicit mirror of a graph.
//
// In the mirror every curved edge of the original graph becomes a chain of
// straight segments through synthetic bend nodes, one per control point.
// Straight edges map to a single segment. Layout code works entirely on the
// mirror and never needs to reason about curves:
//
//	s, _ := bends.New(g, bends.Options{})
//	s.Push()                 // original → mirror
//	// ... move mirror nodes, insert or remove bends ...
//	s.Pull()                 // mirror → original, rebuilding control points
//
// The synchronizer keeps explicit lookup maps in both directions: original
// node ↔ mirror node, original edge → ordered segment chain, and any mirror
// segment or bend back to its originating edge.
package bends
