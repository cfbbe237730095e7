package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the default tolerance for float comparisons.
const Epsilon = 1e-4

// Vec is a 2D coordinate or displacement.
type Vec = r2.Vec

// Eq reports whether a and b are equal within Epsilon.
func Eq(a, b float64) bool { return EqEps(a, b, Epsilon) }

// EqEps reports whether a and b differ by at most eps.
func EqEps(a, b, eps float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= eps
}

// EqVec reports whether a and b are component-wise equal within Epsilon.
func EqVec(a, b Vec) bool { return Eq(a.X, b.X) && Eq(a.Y, b.Y) }

// IsZero reports whether v has a length of at most Epsilon.
func IsZero(v Vec) bool { return r2.Norm(v) <= Epsilon }

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec) float64 { return r2.Norm(r2.Sub(a, b)) }

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec) Vec { return r2.Scale(0.5, r2.Add(a, b)) }

// Lerp interpolates linearly from a (t=0) to b (t=1).
func Lerp(a, b Vec, t float64) Vec { return r2.Add(a, r2.Scale(t, r2.Sub(b, a))) }

// Unit returns v scaled to length one, or the zero vector if v is (near) zero.
func Unit(v Vec) Vec {
	if IsZero(v) {
		return Vec{}
	}
	return r2.Unit(v)
}

// WithNorm returns v rescaled to length n with its direction preserved.
// A zero v stays zero.
func WithNorm(v Vec, n float64) Vec {
	return r2.Scale(n, Unit(v))
}

// Rotate rotates v counter-clockwise by alpha radians around the origin.
func Rotate(v Vec, alpha float64) Vec {
	sin, cos := math.Sincos(alpha)
	return Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// Perp returns v rotated by 90 degrees counter-clockwise.
func Perp(v Vec) Vec { return Vec{X: -v.Y, Y: v.X} }

// Angle returns the direction of v in radians, in (-π, π].
func Angle(v Vec) float64 { return math.Atan2(v.Y, v.X) }

// AngleBetween returns the unsigned angle between a and b in [0, π].
// It returns 0 when either vector is zero.
func AngleBetween(a, b Vec) float64 {
	na, nb := r2.Norm(a), r2.Norm(b)
	if na <= Epsilon || nb <= Epsilon {
		return 0
	}
	c := r2.Dot(a, b) / (na * nb)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// Bisector returns the unit vector halfway between the directions of a and b.
// For opposite vectors the result is a rotated by 90 degrees.
func Bisector(a, b Vec) Vec {
	s := r2.Add(Unit(a), Unit(b))
	if IsZero(s) {
		return Unit(Perp(a))
	}
	return r2.Unit(s)
}

// Orientation returns the sign of the turn a→b→c: +1 counter-clockwise,
// -1 clockwise and 0 for (near) collinear points.
func Orientation(a, b, c Vec) int {
	cr := r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
	scale := r2.Norm(r2.Sub(b, a)) * r2.Norm(r2.Sub(c, a))
	if math.Abs(cr) <= 1e-12*math.Max(scale, 1) {
		return 0
	}
	if cr > 0 {
		return 1
	}
	return -1
}
