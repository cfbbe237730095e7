package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/impred/pkg/geom"
	"github.com/matzehuels/impred/pkg/graph"
	"github.com/matzehuels/impred/pkg/io"
)

// pointsPerInch converts layout units to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Directed draws arrowheads at edge targets.
	Directed bool
}

// ToDOT converts a laid-out document to Graphviz DOT with pinned node
// positions. Nodes are identified by their document IDs.
func ToDOT(doc *io.Document, opts Options) string {
	g := doc.Graph
	pos, size := graph.Positions(g), graph.Sizes(g)
	labels, shapes := graph.Labels(g), graph.Shapes(g)
	ctrl, widths := graph.ControlPoints(g), graph.Widths(g)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.05,0.02\"];\n")
	if !opts.Directed {
		buf.WriteString("  edge [arrowhead=none];\n")
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		id := doc.ID(n)
		label := labels.Get(n)
		if label == "" {
			label = id
		}
		attrs := []string{
			fmt.Sprintf("label=%q", label),
			fmt.Sprintf("pos=%q", fmtPos(pos.Get(n))),
			fmt.Sprintf("shape=%q", dotShape(shapes.Get(n))),
		}
		if s := size.Get(n); s.X > 0 && s.Y > 0 {
			attrs = append(attrs,
				"fixedsize=true",
				"width="+fmtFloat(s.X/pointsPerInch),
				"height="+fmtFloat(s.Y/pointsPerInch))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		s, t, ok := g.Ends(e)
		if !ok {
			continue
		}
		style := ""
		if widths.IsSet(e) {
			style = " [penwidth=" + fmtFloat(widths.Get(e)) + "]"
		}

		chain := []string{doc.ID(s)}
		for i, p := range ctrl.Get(e) {
			bend := fmt.Sprintf("%s->%s#%d.%d", doc.ID(s), doc.ID(t), e, i)
			fmt.Fprintf(&buf, "  %q [shape=point, width=0, height=0, label=\"\", pos=%q];\n", bend, fmtPos(p))
			chain = append(chain, bend)
		}
		chain = append(chain, doc.ID(t))

		for i := 0; i+1 < len(chain); i++ {
			segStyle := style
			if i+2 < len(chain) {
				segStyle = joinAttrs(style, "arrowhead=none")
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", chain[i], chain[i+1], segStyle)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// fmtPos formats a pinned neato position, flipping y.
func fmtPos(p geom.Vec) string {
	return fmtFloat(p.X) + "," + fmtFloat(-p.Y) + "!"
}

func fmtFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func dotShape(shape string) string {
	if shape == "" || shape == graph.DefaultShape {
		return "box"
	}
	return shape
}

func joinAttrs(list, attr string) string {
	if list == "" {
		return " [" + attr + "]"
	}
	return strings.TrimSuffix(list, "]") + ", " + attr + "]"
}
