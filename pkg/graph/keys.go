package graph

import "github.com/matzehuels/impred/pkg/geom"

// Well-known attribute keys.
const (
	KeyPosition      = "position"
	KeySize          = "size"
	KeyControlPoints = "controlPoints"
	KeyWidth         = "width"
	KeyShape         = "shape"
	KeyLabel         = "label"

	KeyPinned   = "pinned"
	KeyTarget   = "target"
	KeyFlexible = "flexible"
)

// Default values of the well-known attributes.
const (
	DefaultWidth = 1.0
	DefaultShape = "rectangle"
)

// Positions returns the node position attribute.
func Positions(g *Graph) *Attribute[Node, geom.Vec] {
	return NodeAttribute(g, KeyPosition, geom.Vec{})
}

// Sizes returns the node size attribute. Sizes are full width and height.
func Sizes(g *Graph) *Attribute[Node, geom.Vec] {
	return NodeAttribute(g, KeySize, geom.Vec{})
}

// ControlPoints returns the edge control point attribute. An edge without
// control points is drawn as a straight segment.
func ControlPoints(g *Graph) *Attribute[Edge, []geom.Vec] {
	return EdgeAttribute[[]geom.Vec](g, KeyControlPoints, nil)
}

// Widths returns the edge width attribute.
func Widths(g *Graph) *Attribute[Edge, float64] {
	return EdgeAttribute(g, KeyWidth, DefaultWidth)
}

// Shapes returns the node shape attribute.
func Shapes(g *Graph) *Attribute[Node, string] {
	return NodeAttribute(g, KeyShape, DefaultShape)
}

// Labels returns the node label attribute.
func Labels(g *Graph) *Attribute[Node, string] {
	return NodeAttribute(g, KeyLabel, "")
}

// Pinned returns the node attribute marking nodes that must not move.
func Pinned(g *Graph) *Attribute[Node, bool] {
	return NodeAttribute(g, KeyPinned, false)
}

// Targets returns the per-node attraction target attribute.
func Targets(g *Graph) *Attribute[Node, geom.Vec] {
	return NodeAttribute(g, KeyTarget, geom.Vec{})
}

// Flexible returns the edge attribute marking edges that may gain and lose
// bends during layout.
func Flexible(g *Graph) *Attribute[Edge, bool] {
	return EdgeAttribute(g, KeyFlexible, false)
}
