package geom

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/impred/pkg/errors"
)

// Polygon is a closed polygon given by its vertices in order. The closing
// edge from the last vertex back to the first is implicit.
type Polygon []Vec

// Edges returns the polygon sides in order, closing edge last.
func (p Polygon) Edges() []Segment {
	if len(p) < 2 {
		return nil
	}
	out := make([]Segment, len(p))
	for i := range p {
		out[i] = Segment{A: p[i], B: p[(i+1)%len(p)]}
	}
	return out
}

// SignedArea returns the shoelace area: positive for counter-clockwise
// vertex order, negative for clockwise.
func (p Polygon) SignedArea() float64 {
	var a float64
	for i := range p {
		a += r2.Cross(p[i], p[(i+1)%len(p)])
	}
	return a / 2
}

// IsSimple reports whether no two non-adjacent sides touch and adjacent
// sides only share their common vertex.
func (p Polygon) IsSimple() bool {
	n := len(p)
	if n < 3 {
		return false
	}
	for k := range p {
		prev, v, next := p[(k+n-1)%n], p[k], p[(k+1)%n]
		if EqVec(v, next) {
			return false
		}
		// Adjacent sides folding back onto each other overlap.
		if Orientation(prev, v, next) == 0 && r2.Dot(r2.Sub(prev, v), r2.Sub(next, v)) > 0 {
			return false
		}
	}
	edges := p.Edges()
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if edges[i].Touches(edges[j]) {
				return false
			}
		}
	}
	return true
}

// Centroid returns the area centroid. Non-simple or zero-area polygons
// yield an INVALID_ARGUMENT error.
func (p Polygon) Centroid() (Vec, error) {
	if !p.IsSimple() {
		return Vec{}, errors.Invalid("centroid requires a simple polygon")
	}
	a := p.SignedArea()
	if Eq(a, 0) {
		return Vec{}, errors.Invalid("centroid of a zero-area polygon")
	}
	var c Vec
	for i := range p {
		q, r := p[i], p[(i+1)%len(p)]
		f := r2.Cross(q, r)
		c = r2.Add(c, r2.Scale(f, r2.Add(q, r)))
	}
	return r2.Scale(1/(6*a), c), nil
}

// OnBoundary reports whether q lies on one of the polygon sides.
func (p Polygon) OnBoundary(q Vec) bool {
	for _, e := range p.Edges() {
		if e.Degenerate() {
			if EqVec(e.A, q) {
				return true
			}
			continue
		}
		if d, err := e.Distance(q); err == nil && d <= Epsilon {
			return true
		}
	}
	return false
}

// Contains reports whether q lies inside p or on its boundary.
//
// It casts a ray in a random direction and counts side crossings. A ray
// that hits a vertex or runs parallel to a side is degenerate and is
// re-rolled with a new direction.
func (p Polygon) Contains(q Vec) bool {
	if len(p) < 3 {
		return false
	}
	if p.OnBoundary(q) {
		return true
	}
	bounds := BoxOf(p...)
	w, h := Extent(bounds)
	reach := 2*(math.Hypot(w, h)+Distance(q, bounds.Min)) + 1

	for {
		inside, err := p.castRay(q, reach, rand.Float64()*2*math.Pi)
		if err == nil {
			return inside
		}
		if !errors.IsDegenerate(err) {
			return false
		}
	}
}

func (p Polygon) castRay(q Vec, reach, angle float64) (bool, error) {
	ray := Segment{A: q, B: r2.Add(q, Rotate(Vec{X: reach}, angle))}
	crossings := 0
	for _, e := range p.Edges() {
		if e.Degenerate() {
			continue
		}
		x, ok, err := ray.Intersect(e)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		if EqVec(x, e.A) || EqVec(x, e.B) {
			return false, errors.Degenerate("ray passes through a vertex")
		}
		crossings++
	}
	return crossings%2 == 1, nil
}

// ConvexHull returns the convex hull of points as a counter-clockwise
// polygon using a Graham scan. The first vertex is the bottom-most point
// (left-most among ties); collinear and interior points are dropped.
func ConvexHull(points []Vec) Polygon {
	pts := make([]Vec, 0, len(points))
	for _, q := range points {
		if !slices.ContainsFunc(pts, func(o Vec) bool { return EqVec(o, q) }) {
			pts = append(pts, q)
		}
	}
	if len(pts) < 3 {
		return Polygon(pts)
	}

	pivot := 0
	for i, q := range pts {
		if q.Y < pts[pivot].Y || (q.Y == pts[pivot].Y && q.X < pts[pivot].X) {
			pivot = i
		}
	}
	pts[0], pts[pivot] = pts[pivot], pts[0]
	origin := pts[0]
	rest := pts[1:]

	slices.SortFunc(rest, func(a, b Vec) int {
		switch Orientation(origin, a, b) {
		case 1:
			return -1
		case -1:
			return 1
		}
		da, db := Distance(origin, a), Distance(origin, b)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})

	hull := Polygon{origin}
	for _, q := range rest {
		for len(hull) >= 2 && Orientation(hull[len(hull)-2], hull[len(hull)-1], q) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, q)
	}
	return hull
}
