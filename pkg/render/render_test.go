package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/io"
)

func testDocument(t *testing.T) *io.Document {
	t.Helper()
	doc, err := io.ReadJSON(strings.NewReader(`{
		"nodes": [
			{"id": "a", "position": [0, 0], "size": [72, 36], "label": "Alpha"},
			{"id": "b", "position": [100, 50], "shape": "ellipse"}
		],
		"edges": [
			{"from": "a", "to": "b", "control_points": [[50, 80]], "width": 2}
		]
	}`))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return doc
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testDocument(t), Options{Directed: true})

	for _, want := range []string{
		`"a" [label="Alpha", pos="0,0!", shape="box", fixedsize=true, width=1, height=0.5];`,
		`"b" [label="b", pos="100,-50!", shape="ellipse"];`,
		`shape=point`,
		`pos="50,-80!"`,
		`"a" -> "a->b#0.0" [penwidth=2, arrowhead=none];`,
		`"a->b#0.0" -> "b" [penwidth=2];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "edge [arrowhead=none]") {
		t.Error("directed output should keep arrowheads")
	}
}

func TestToDOTUndirected(t *testing.T) {
	doc := io.NewDocument(nil)
	a, b := doc.Graph.AddNode(), doc.Graph.AddNode()
	graph.Positions(doc.Graph).Set(b, geom.Vec{X: 10, Y: 0})
	if _, err := doc.Graph.AddEdge(a, b); err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(doc, Options{})
	if !strings.Contains(dot, "edge [arrowhead=none]") {
		t.Error("undirected output should drop arrowheads")
	}
	if !strings.Contains(dot, `"n0" -> "n1";`) {
		t.Errorf("missing straight edge:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`viewBox="0 0 100.00 50.00" width="100" height="50"`)) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("svg without viewBox should be unchanged, got %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(testDocument(t), Options{Directed: true}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("Alpha")) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG("digraph {"); err == nil {
		t.Error("expected parse error")
	}
}
