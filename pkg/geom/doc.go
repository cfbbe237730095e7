// Package geom provides the planar geometry primitives used by the layout
// engine: vector helpers on top of [r2.Vec], point/segment projection,
// segment intersection, polygon predicates and a Graham-scan convex hull.
//
// # Tolerances
//
// Floating-point comparisons throughout the engine go through [Eq] and
// [EqVec], which use [Epsilon] (1e-4) instead of exact equality. Near-zero
// vectors are detected with [IsZero] before normalizing so that force
// directions stay stable close to convergence.
//
// # Errors
//
// Malformed input, such as two coincident points defining a segment, yields
// an INVALID_ARGUMENT error from [github.com/matzehuels/impred/pkg/errors].
// Valid input without a unique answer, such as parallel segments passed to
// [Segment.Intersect], yields DEGENERATE_GEOMETRY. [Polygon.Contains] relies
// on the distinction: it re-rolls its random probe ray whenever it hits the
// degenerate case.
//
// [r2.Vec]: https://pkg.go.dev/gonum.org/v1/gonum/spatial/r2#Vec
package geom
