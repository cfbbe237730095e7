// Package premove provides pre-movement steps that regularize the planned
// movements before the engine applies them.
package premove

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
)

// Defaults for VectorField.
const (
	DefaultMinGridDimension = 4
	DefaultSmoothness       = 1.0
)

// VectorField replaces independent per-node movements by a smooth field.
//
// A uniform grid is laid over the nodes that move or carry their own cap.
// Each such node contributes a least-squares row stating that its movement
// is the bilinear blend of its cell's four corner values; every corner
// contributes a row, weighted by Smoothness, stating that it equals the
// average of its neighbours. The x and y components are solved
// independently through the normal equations. Every node inside the
// grid, contributing or not, then gets its movement re-interpolated from
// the corners and clipped to its cap again so pinned nodes and collision
// caps survive the smoothing. Nodes outside the grid keep their movement.
type VectorField struct {
	// MinGridDimension is the number of cells along the longer side of
	// the bounding box.
	MinGridDimension int
	// Smoothness weights the regularizer rows against the data rows.
	Smoothness float64
}

type grid struct {
	origin     geom.Vec
	cell       float64
	cols, rows int
}

func (g grid) corners() int { return (g.cols + 1) * (g.rows + 1) }

func (g grid) index(i, j int) int { return j*(g.cols+1) + i }

// weights returns the four corner indices of p's cell and their bilinear
// weights.
func (g grid) weights(p geom.Vec) ([4]int, [4]float64) {
	gx := (p.X - g.origin.X) / g.cell
	gy := (p.Y - g.origin.Y) / g.cell
	i := min(max(int(math.Floor(gx)), 0), g.cols-1)
	j := min(max(int(math.Floor(gy)), 0), g.rows-1)
	fx, fy := gx-float64(i), gy-float64(j)
	return [4]int{g.index(i, j), g.index(i+1, j), g.index(i, j+1), g.index(i+1, j+1)},
		[4]float64{(1 - fx) * (1 - fy), fx * (1 - fy), (1 - fx) * fy, fx * fy}
}

func (v *VectorField) Adjust(ctx *impred.Context) error {
	var nodes []graph.Node
	for _, n := range ctx.Graph.Nodes() {
		_, capped := ctx.NodeConstraint(n)
		if capped || ctx.Movement(n) != (geom.Vec{}) {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) < 2 {
		return nil
	}

	points := make([]geom.Vec, len(nodes))
	for i, n := range nodes {
		points[i] = ctx.Position(n)
	}
	box := geom.BoxOf(points...)
	w, h := geom.Extent(box)
	extent := math.Max(w, h)
	if extent <= geom.Epsilon {
		return nil
	}

	dim := v.MinGridDimension
	if dim <= 0 {
		dim = DefaultMinGridDimension
	}
	smooth := v.Smoothness
	if smooth <= 0 {
		smooth = DefaultSmoothness
	}
	g := grid{origin: box.Min, cell: extent / float64(dim)}
	g.cols = max(1, int(math.Ceil(w/g.cell-1e-9)))
	g.rows = max(1, int(math.Ceil(h/g.cell-1e-9)))

	solved, err := v.solve(ctx, g, nodes, points, smooth)
	if err != nil {
		return err
	}

	for _, n := range ctx.Graph.Nodes() {
		p := ctx.Position(n)
		if !geom.InBox(box, p) {
			continue
		}
		idx, wt := g.weights(p)
		var m geom.Vec
		for k := range idx {
			m.X += wt[k] * solved.At(idx[k], 0)
			m.Y += wt[k] * solved.At(idx[k], 1)
		}
		ctx.SetMovement(n, impred.Clip(m, impred.SafetyFactor*ctx.Constraint(n)))
	}
	return nil
}

// solve builds the least-squares system and returns the corner values as
// an N×2 matrix (x and y columns).
func (v *VectorField) solve(ctx *impred.Context, g grid, nodes []graph.Node, points []geom.Vec, smooth float64) (*mat.Dense, error) {
	n := g.corners()
	a := mat.NewDense(len(nodes)+n, n, nil)
	b := mat.NewDense(len(nodes)+n, 2, nil)

	for r, node := range nodes {
		idx, wt := g.weights(points[r])
		for k := range idx {
			a.Set(r, idx[k], a.At(r, idx[k])+wt[k])
		}
		m := ctx.Movement(node)
		b.Set(r, 0, m.X)
		b.Set(r, 1, m.Y)
	}

	row := len(nodes)
	for j := 0; j <= g.rows; j++ {
		for i := 0; i <= g.cols; i++ {
			var neighbours []int
			if i > 0 {
				neighbours = append(neighbours, g.index(i-1, j))
			}
			if i < g.cols {
				neighbours = append(neighbours, g.index(i+1, j))
			}
			if j > 0 {
				neighbours = append(neighbours, g.index(i, j-1))
			}
			if j < g.rows {
				neighbours = append(neighbours, g.index(i, j+1))
			}
			a.Set(row, g.index(i, j), smooth)
			for _, k := range neighbours {
				a.Set(row, k, -smooth/float64(len(neighbours)))
			}
			row++
		}
	}

	normal := mat.NewSymDense(n, nil)
	normal.SymOuterK(1, a.T())
	var atb mat.Dense
	atb.Mul(a.T(), b)

	var x mat.Dense
	var chol mat.Cholesky
	if chol.Factorize(normal) {
		if err := chol.SolveTo(&x, &atb); err == nil {
			return &x, nil
		}
	}
	if err := x.Solve(normal, &atb); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("vector field: %w", err)
		}
	}
	return &x, nil
}

var _ impred.PreMovement = (*VectorField)(nil)
