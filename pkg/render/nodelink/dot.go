package nodelink

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
)

// Graphviz positions are in points; one inch is 72 points.
const pointsPerInch = 72.0

const dotHeader = `graph G {
  layout=neato;
  bgcolor="transparent";
  outputorder=edgesfirst;
  node [shape=circle, style=filled, fillcolor=white, fontsize=10, fixedsize=true];

`

// Options configures snapshot rendering.
type Options struct {
	// Time is the instant whose snapshot is drawn.
	Time float64

	// Scale converts layout units to points. Zero means 1.
	Scale float64

	// Detailed adds the node ID and sorted metadata below the label.
	Detailed bool
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// ToDOT converts the snapshot of g at opts.Time to Graphviz DOT. Only
// nodes present at that time are emitted, and only edges whose endpoints
// are present too. Every node carries a pinned pos attribute, so the
// result must be laid out with neato (as [RenderSVG] does).
func ToDOT(g *dygraph.Graph, opts Options) string {
	t, scale := opts.Time, opts.scale()

	var buf bytes.Buffer
	buf.WriteString(dotHeader)

	for _, n := range g.NodesAt(t) {
		p := n.Position.ValueAt(t)
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, t, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(p.X*scale), fmtFloat(p.Y*scale)),
			fmt.Sprintf("width=%s", fmtFloat(nodeWidth(n.Size.ValueAt(t), scale))),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.EdgesAt(t) {
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%s];\n", e.From, e.To, fmtFloat(e.Weight()))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *dygraph.Node, t float64, detailed bool) string {
	label := n.Label.ValueAt(t)
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}

	parts := []string{"id: " + n.ID}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// nodeWidth converts a node size in layout units to inches.
func nodeWidth(size, scale float64) float64 {
	w := size * scale / pointsPerInch
	return max(w, 0.05)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
