package constraint

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/impred"
)

// SurroundingEdges prevents nodes and segments from passing through each
// other.
//
// For every node and every nearby segment not incident to it, the node is
// projected onto the segment's line. If the foot lies on the segment, the
// gap is split evenly: the node may approach the segment by half the
// perpendicular distance and both endpoints may approach the node by the
// same amount. Otherwise the closer endpoint is the collision point; node
// and close endpoint share half their distance and the far endpoint may
// approach by the node's distance to the line.
//
// A distance becomes a cap by dividing it by the cosine of the angle
// between the node's current force and the collision direction, so only
// the component of the movement toward the collision is limited. Movement
// at 90° or more from the collision direction is not capped.
//
// A node touching a segment or an endpoint is frozen together with the
// elements it touches.
//
// Segments further away than three times the current default cap are
// ignored; with no default cap every segment is checked.
type SurroundingEdges struct{}

func (s *SurroundingEdges) Compute(ctx *impred.Context) impred.Caps {
	caps := impred.NewCaps()
	reach := 3 * ctx.DefaultConstraint()

	for _, n := range ctx.Graph.Nodes() {
		p := ctx.Position(n)
		for _, e := range ctx.Locator.EdgesNearNode(n, reach) {
			if ctx.Graph.IsIncident(e, n) {
				continue
			}
			a, b, pa, pb := ctx.Endpoints(e)
			seg := geom.Segment{A: pa, B: pb}
			if seg.Degenerate() {
				continue
			}
			u, foot, err := seg.Project(p)
			if err != nil {
				continue
			}

			if u >= 0 && u <= 1 {
				perp := geom.Distance(p, foot)
				if perp <= geom.Epsilon {
					freeze(caps, n, a, b)
					continue
				}
				gap := perp / 2
				toward := r2.Sub(p, foot)
				capToward(ctx, caps, n, r2.Scale(-1, toward), gap)
				capToward(ctx, caps, a, toward, gap)
				capToward(ctx, caps, b, toward, gap)
				continue
			}

			near, far, pn := a, b, pa
			if u > 1 {
				near, far, pn = b, a, pb
			}
			d := geom.Distance(p, pn)
			if d <= geom.Epsilon {
				freeze(caps, n, near)
				continue
			}
			capToward(ctx, caps, n, r2.Sub(pn, p), d/2)
			capToward(ctx, caps, near, r2.Sub(p, pn), d/2)
			if line := geom.Distance(p, foot); line > geom.Epsilon {
				capToward(ctx, caps, far, r2.Sub(p, foot), line)
			}
		}
	}
	return caps
}

// freeze stops nodes that are already in contact.
func freeze(caps impred.Caps, nodes ...graph.Node) {
	for _, n := range nodes {
		caps.Lower(n, 0)
	}
}

// capToward limits n's movement along direction to distance, measured
// against n's current force.
func capToward(ctx *impred.Context, caps impred.Caps, n graph.Node, direction geom.Vec, distance float64) {
	f := ctx.Force(n)
	if geom.IsZero(f) || geom.IsZero(direction) {
		return
	}
	theta := geom.AngleBetween(f, direction)
	cos := math.Cos(theta)
	if theta >= math.Pi/2 || cos <= 1e-9 {
		return
	}
	caps.Lower(n, distance/cos)
}
