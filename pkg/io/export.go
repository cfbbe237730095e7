package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
)

type document struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Shape    string `json:"shape,omitempty"`
	Position *point `json:"position,omitempty"`
	Size     *point `json:"size,omitempty"`
	Target   *point `json:"target,omitempty"`
	Pinned   bool   `json:"pinned,omitempty"`
}

type edge struct {
	From          string   `json:"from"`
	To            string   `json:"to"`
	ControlPoints []point  `json:"control_points,omitempty"`
	Width         *float64 `json:"width,omitempty"`
	Flexible      bool     `json:"flexible,omitempty"`
}

// point is a coordinate pair encoded as [x, y].
type point [2]float64

func pointOf(v geom.Vec) *point { return &point{v.X, v.Y} }

func (p point) vec() geom.Vec { return geom.Vec{X: p[0], Y: p[1]} }

func (p point) finite() bool {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// WriteJSON encodes the document as indented JSON and writes it to w.
// Nodes and edges are written in handle order and attributes equal to their
// default are omitted. The output can be re-imported with [ReadJSON].
func WriteJSON(d *Document, w io.Writer) error {
	g := d.Graph
	pos, size := graph.Positions(g), graph.Sizes(g)
	labels, shapes := graph.Labels(g), graph.Shapes(g)
	targets, pinned := graph.Targets(g), graph.Pinned(g)

	nodes := g.Nodes()
	out := document{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	for i, n := range nodes {
		nd := node{
			ID:     d.ID(n),
			Label:  labels.Get(n),
			Pinned: pinned.Get(n),
		}
		if s := shapes.Get(n); s != shapes.Default() {
			nd.Shape = s
		}
		nd.Position = pointOf(pos.Get(n))
		if size.IsSet(n) {
			nd.Size = pointOf(size.Get(n))
		}
		if targets.IsSet(n) {
			nd.Target = pointOf(targets.Get(n))
		}
		out.Nodes[i] = nd
	}

	ctrl, widths, flexible := graph.ControlPoints(g), graph.Widths(g), graph.Flexible(g)
	for _, e := range g.Edges() {
		s, t, ok := g.Ends(e)
		if !ok {
			continue
		}
		ed := edge{From: d.ID(s), To: d.ID(t), Flexible: flexible.Get(e)}
		for _, p := range ctrl.Get(e) {
			ed.ControlPoints = append(ed.ControlPoints, *pointOf(p))
		}
		if widths.IsSet(e) {
			w := widths.Get(e)
			ed.Width = &w
		}
		out.Edges = append(out.Edges, ed)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the document to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(d, f)
}
