package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/skein/pkg/graph"
)

// Circle diameters in inches for the two node categories.
const (
	groupNodeSize  = 0.5
	memberNodeSize = 0.35
)

var categoryFill = map[graph.Category]string{
	graph.CategoryGroup:  "#4dabf7",
	graph.CategoryMember: "#69db7c",
}

// Options configures DOT generation.
type Options struct {
	// FlipHeight mirrors the Y axis at the given frame height, converting
	// layout coordinates (y grows downward) into Graphviz plot coordinates
	// (y grows upward) so exports match the live views. Zero leaves Y as-is.
	FlipHeight float64
}

// ToDOT converts a snapshot to Graphviz DOT using the neato engine with
// every position pinned, so the picture reproduces the layout the force
// engine computed instead of being re-laid-out. The resulting DOT string
// can be rendered with [RenderSVG] or [RenderPNG].
//
// Pinned nodes get a red outline to mark them as user-controlled.
func ToDOT(s graph.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, label=\"\", fontsize=10];\n")
	buf.WriteString("  edge [color=\"#adb5bd\"];\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.Node, opts Options) []string {
	y := n.Pos.Y
	if opts.FlipHeight > 0 {
		y = opts.FlipHeight - y
	}
	size := memberNodeSize
	if n.Category == graph.CategoryGroup {
		size = groupNodeSize
	}

	attrs := []string{
		fmt.Sprintf("xlabel=%q", n.Label),
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.Pos.X, y),
		fmt.Sprintf("width=%g", size),
		fmt.Sprintf("fillcolor=%q", categoryFill[n.Category]),
	}
	if n.Pinned {
		attrs = append(attrs, "color=\"#e03131\"", "penwidth=2")
	}
	return attrs
}
