package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Box is an axis-aligned bounding box.
type Box = r2.Box

// BoxAround returns the box of the given size centered on c.
func BoxAround(c, size Vec) Box {
	h := r2.Scale(0.5, Vec{X: math.Abs(size.X), Y: math.Abs(size.Y)})
	return Box{Min: r2.Sub(c, h), Max: r2.Add(c, h)}
}

// BoxOf returns the smallest box containing all points.
// It returns the zero box for no points.
func BoxOf(points ...Vec) Box {
	if len(points) == 0 {
		return Box{}
	}
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = Include(b, p)
	}
	return b
}

// Include grows b to contain p.
func Include(b Box, p Vec) Box {
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
	return b
}

// Union returns the smallest box containing a and b.
func Union(a, b Box) Box {
	return Include(Include(a, b.Min), b.Max)
}

// Expand grows b by r on every side.
func Expand(b Box, r float64) Box {
	d := Vec{X: r, Y: r}
	return Box{Min: r2.Sub(b.Min, d), Max: r2.Add(b.Max, d)}
}

// Overlaps reports whether a and b share at least one point.
func Overlaps(a, b Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}

// InBox reports whether p lies inside b, borders included.
func InBox(b Box, p Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Extent returns the width and height of b.
func Extent(b Box) (w, h float64) {
	return b.Max.X - b.Min.X, b.Max.Y - b.Min.Y
}
