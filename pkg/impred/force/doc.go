// Package force provides the force terms of the layout engine.
//
// Each term returns one vector per affected mirror node; the engine sums
// them. Pairwise terms ([EdgeAttraction], [NodeRepulsion],
// [EdgeNodeRepulsion]) always apply equal and opposite vectors to the two
// sides of an interaction. Exponents interpolate linearly from a start
// value at temperature 1 to an end value at temperature 0.
//
// Node subsets are given as handles of the original graph; nil selects all
// original nodes. Edge subsets are original edges and cover all of their
// mirror segments; nil selects every segment.
package force

import "math"

// exponent interpolates between start (T=1) and end (T=0).
func exponent(start, end, temperature float64) float64 {
	return end + (start-end)*temperature
}

func pow(base, k float64) float64 {
	if k == 1 {
		return base
	}
	return math.Pow(base, k)
}
