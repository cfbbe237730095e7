package io

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/impred/pkg/errors"
	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
)

var (
	// ErrDuplicateID is returned when two nodes share an identifier.
	ErrDuplicateID = stderrors.New("duplicate node id")

	// ErrUnknownEndpoint is returned when an edge references a missing node.
	ErrUnknownEndpoint = stderrors.New("unknown edge endpoint")

	// ErrNonFinite is returned for NaN or infinite coordinates.
	ErrNonFinite = stderrors.New("non-finite coordinate")
)

// ReadJSON decodes a JSON layout document from r.
//
// Every node needs a unique, non-empty id and every edge must reference
// known ids. Coordinates must be finite and sizes non-negative. Errors carry
// the INVALID_FORMAT code and name the node or edge that caused them.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}

	doc := NewDocument(nil)
	g := doc.Graph
	pos, size := graph.Positions(g), graph.Sizes(g)
	labels, shapes := graph.Labels(g), graph.Shapes(g)
	targets, pinned := graph.Targets(g), graph.Pinned(g)

	for _, n := range data.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q", n.ID)
		}
		if _, dup := doc.Node(n.ID); dup {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, ErrDuplicateID, "node %q", n.ID)
		}
		if err := n.check(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q", n.ID)
		}

		id := g.AddNode()
		doc.SetID(id, n.ID)
		if n.Position != nil {
			pos.Set(id, n.Position.vec())
		}
		if n.Size != nil {
			size.Set(id, n.Size.vec())
		}
		if n.Target != nil {
			targets.Set(id, n.Target.vec())
		}
		if n.Label != "" {
			labels.Set(id, n.Label)
		}
		if n.Shape != "" {
			shapes.Set(id, n.Shape)
		}
		if n.Pinned {
			pinned.Set(id, true)
		}
	}

	ctrl, widths, flexible := graph.ControlPoints(g), graph.Widths(g), graph.Flexible(g)
	for _, e := range data.Edges {
		from, ok := doc.Node(e.From)
		if !ok {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, ErrUnknownEndpoint, "edge %s->%s: %q", e.From, e.To, e.From)
		}
		to, ok := doc.Node(e.To)
		if !ok {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, ErrUnknownEndpoint, "edge %s->%s: %q", e.From, e.To, e.To)
		}
		if err := e.check(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edge %s->%s", e.From, e.To)
		}

		id, err := g.AddEdge(from, to)
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
		if len(e.ControlPoints) > 0 {
			pts := make([]geom.Vec, len(e.ControlPoints))
			for i, p := range e.ControlPoints {
				pts[i] = p.vec()
			}
			ctrl.Set(id, pts)
		}
		if e.Width != nil {
			widths.Set(id, *e.Width)
		}
		if e.Flexible {
			flexible.Set(id, true)
		}
	}

	return doc, nil
}

// ImportJSON reads the JSON file at path and returns the decoded document.
//
// ImportJSON returns the same validation errors as [ReadJSON]; failures to
// open the file are wrapped with the path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func (n node) check() error {
	for _, p := range []*point{n.Position, n.Size, n.Target} {
		if p != nil && !p.finite() {
			return ErrNonFinite
		}
	}
	if n.Size != nil && (n.Size[0] < 0 || n.Size[1] < 0) {
		return fmt.Errorf("negative size [%g, %g]", n.Size[0], n.Size[1])
	}
	return nil
}

func (e edge) check() error {
	for _, p := range e.ControlPoints {
		if !p.finite() {
			return ErrNonFinite
		}
	}
	if e.Width != nil && (*e.Width < 0 || math.IsNaN(*e.Width) || math.IsInf(*e.Width, 0)) {
		return fmt.Errorf("invalid width %g", *e.Width)
	}
	return nil
}
