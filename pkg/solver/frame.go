package solver

import (
	"github.com/matzehuels/dynalayout/pkg/dygraph"
)

// Frame is the static picture of a graph at one instant that kernels
// operate on. IDs lists the present nodes in graph order; Pos holds their
// current positions and Init the positions the frame started from.
type Frame struct {
	Time  float64
	IDs   []string
	Pos   map[string]dygraph.Point
	Init  map[string]dygraph.Point
	Edges []*dygraph.Edge
}

func newFrame(g *dygraph.Graph, t float64) *Frame {
	nodes := g.NodesAt(t)
	f := &Frame{
		Time:  t,
		IDs:   make([]string, 0, len(nodes)),
		Pos:   make(map[string]dygraph.Point, len(nodes)),
		Init:  make(map[string]dygraph.Point, len(nodes)),
		Edges: g.EdgesAt(t),
	}
	for _, n := range nodes {
		p := n.Position.ValueAt(t)
		f.IDs = append(f.IDs, n.ID)
		f.Pos[n.ID] = p
		f.Init[n.ID] = p
	}
	return f
}

// Displacement accumulates the movement kernels request for each node
// during one iteration.
type Displacement map[string]dygraph.Point

// Add moves id by d.
func (d Displacement) Add(id string, v dygraph.Point) { d[id] = d[id].Add(v) }
