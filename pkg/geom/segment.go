package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/impred/pkg/errors"
)

// Segment is the straight segment from A to B. Its supporting line is used
// by the projection methods.
type Segment struct {
	A, B Vec
}

// Length returns the length of s.
func (s Segment) Length() float64 { return Distance(s.A, s.B) }

// Direction returns B-A.
func (s Segment) Direction() Vec { return r2.Sub(s.B, s.A) }

// Midpoint returns the point halfway between A and B.
func (s Segment) Midpoint() Vec { return Midpoint(s.A, s.B) }

// Degenerate reports whether A and B coincide within Epsilon.
func (s Segment) Degenerate() bool { return EqVec(s.A, s.B) }

// Bounds returns the bounding box of s.
func (s Segment) Bounds() Box { return BoxOf(s.A, s.B) }

func (s Segment) check() error {
	if s.Degenerate() {
		return errors.Invalid("segment endpoints coincide at (%g, %g)", s.A.X, s.A.Y)
	}
	return nil
}

// Project projects p onto the line through s. It returns the line
// parameter t (0 at A, 1 at B) and the foot point. Coincident endpoints
// yield an INVALID_ARGUMENT error.
func (s Segment) Project(p Vec) (t float64, foot Vec, err error) {
	if err := s.check(); err != nil {
		return 0, Vec{}, err
	}
	d := s.Direction()
	t = r2.Dot(r2.Sub(p, s.A), d) / r2.Norm2(d)
	return t, r2.Add(s.A, r2.Scale(t, d)), nil
}

// LineDistance returns the distance from p to the line through s.
func (s Segment) LineDistance(p Vec) (float64, error) {
	_, foot, err := s.Project(p)
	if err != nil {
		return 0, err
	}
	return Distance(p, foot), nil
}

// ClosestPoint returns the point of s closest to p.
func (s Segment) ClosestPoint(p Vec) (Vec, error) {
	t, foot, err := s.Project(p)
	if err != nil {
		return Vec{}, err
	}
	switch {
	case t <= 0:
		return s.A, nil
	case t >= 1:
		return s.B, nil
	}
	return foot, nil
}

// Distance returns the distance from p to the closest point of s.
func (s Segment) Distance(p Vec) (float64, error) {
	c, err := s.ClosestPoint(p)
	if err != nil {
		return 0, err
	}
	return Distance(p, c), nil
}

// Intersect returns the intersection point of s and o. The boolean is false
// when the supporting lines cross outside either segment. Parallel or
// collinear segments have no unique intersection and yield a
// DEGENERATE_GEOMETRY error; degenerate segments yield INVALID_ARGUMENT.
func (s Segment) Intersect(o Segment) (Vec, bool, error) {
	if err := s.check(); err != nil {
		return Vec{}, false, err
	}
	if err := o.check(); err != nil {
		return Vec{}, false, err
	}
	d1, d2 := s.Direction(), o.Direction()
	den := r2.Cross(d1, d2)
	if math.Abs(den) <= 1e-12*r2.Norm(d1)*r2.Norm(d2) {
		return Vec{}, false, errors.Degenerate("segments are parallel")
	}
	w := r2.Sub(o.A, s.A)
	t := r2.Cross(w, d2) / den
	u := r2.Cross(w, d1) / den
	p := r2.Add(s.A, r2.Scale(t, d1))
	const tol = 1e-9
	if t < -tol || t > 1+tol || u < -tol || u > 1+tol {
		return p, false, nil
	}
	return p, true, nil
}

// Touches reports whether s and o share at least one point, including
// collinear overlap and touching endpoints. Unlike Intersect it never fails.
func (s Segment) Touches(o Segment) bool {
	o1 := Orientation(s.A, s.B, o.A)
	o2 := Orientation(s.A, s.B, o.B)
	o3 := Orientation(o.A, o.B, s.A)
	o4 := Orientation(o.A, o.B, s.B)
	if o1 != o2 && o3 != o4 {
		return true
	}
	return (o1 == 0 && onSegment(s, o.A)) ||
		(o2 == 0 && onSegment(s, o.B)) ||
		(o3 == 0 && onSegment(o, s.A)) ||
		(o4 == 0 && onSegment(o, s.B))
}

// onSegment reports whether a point collinear with s lies within its bounds.
func onSegment(s Segment, p Vec) bool {
	return InBox(Expand(s.Bounds(), 1e-12), p)
}

// InTriangle reports whether p lies inside or on the border of triangle abc.
func InTriangle(p, a, b, c Vec) bool {
	o1 := Orientation(a, b, p)
	o2 := Orientation(b, c, p)
	o3 := Orientation(c, a, p)
	hasNeg := o1 < 0 || o2 < 0 || o3 < 0
	hasPos := o1 > 0 || o2 > 0 || o3 > 0
	return !(hasNeg && hasPos)
}
