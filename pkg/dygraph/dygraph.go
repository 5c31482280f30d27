package dygraph

import (
	"errors"
	"maps"
	"slices"

	"github.com/matzehuels/dynalayout/pkg/temporal"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when an edge with the
	// same endpoints and direction already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrSelfLoop is returned by [Graph.AddEdge] when From equals To. The
	// layout model has no use for self loops.
	ErrSelfLoop = errors.New("self loop")
)

// Metadata stores arbitrary key-value pairs attached to nodes, edges or the
// graph. Metadata maps are never nil once added to a graph.
type Metadata map[string]any

// Well-known metadata keys.
const (
	// MetaWeight holds the numeric weight of a node or edge. Missing weights
	// count as 1.
	MetaWeight = "weight"
	// MetaSnapshotTimes is the graph-level key under which discretisation
	// records the comma-joined snapshot times.
	MetaSnapshotTimes = "snapshot_times"
)

// Node is a vertex whose attributes evolve over time.
//
// Presence defaults to false: a node exists only where its presence
// evolution is explicitly true.
type Node struct {
	ID       string
	Presence *temporal.Evolution[bool]
	Position *temporal.Evolution[Point]
	Label    *temporal.Evolution[string]
	Size     *temporal.Evolution[float64]
	Meta     Metadata
}

// NewNode returns a node with empty evolutions: never present, placed at
// the origin, unlabelled and of size 1.
func NewNode(id string) Node {
	n := Node{ID: id}
	n.init()
	return n
}

func (n *Node) init() {
	if n.Presence == nil {
		n.Presence = temporal.NewEvolution(false)
	}
	if n.Position == nil {
		n.Position = temporal.NewEvolution(Point{})
	}
	if n.Label == nil {
		n.Label = temporal.NewEvolution("")
	}
	if n.Size == nil {
		n.Size = temporal.NewEvolution(1.0)
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
}

// Weight returns Meta["weight"], or 1 when unset.
func (n *Node) Weight() float64 { return n.Meta.Float(MetaWeight, 1) }

// Reset clears every evolution back to its default.
func (n *Node) Reset() {
	n.Presence.Reset(false)
	n.Position.Reset(Point{})
	n.Label.Reset("")
	n.Size.Reset(1)
}

func (n *Node) clone() *Node {
	c := *n
	c.Presence = n.Presence.Clone()
	c.Position = n.Position.Clone()
	c.Label = n.Label.Clone()
	c.Size = n.Size.Clone()
	c.Meta = maps.Clone(n.Meta)
	return &c
}

// Edge is a directed connection whose presence evolves over time.
type Edge struct {
	From     string
	To       string
	Presence *temporal.Evolution[bool]
	Meta     Metadata
}

// NewEdge returns an edge that is never present.
func NewEdge(from, to string) Edge {
	e := Edge{From: from, To: to}
	e.init()
	return e
}

func (e *Edge) init() {
	if e.Presence == nil {
		e.Presence = temporal.NewEvolution(false)
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
}

// Weight returns Meta["weight"], or 1 when unset.
func (e *Edge) Weight() float64 { return e.Meta.Float(MetaWeight, 1) }

// Other returns the endpoint opposite to id.
func (e *Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}
	return e.From
}

type edgeKey struct{ from, to string }

// Graph is a dynamic graph. Node and edge iteration follows insertion order
// so layouts are reproducible for a fixed random seed.
//
// The zero value is not usable; use New. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []*Edge
	edgeIdx  map[edgeKey]*Edge
	outgoing map[string][]string
	incoming map[string][]string
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		edgeIdx:  make(map[edgeKey]*Edge),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map. It is never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node. Nil evolutions and metadata are initialized to their
// empty defaults. Returns ErrInvalidNodeID or ErrDuplicateNodeID.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	n.init()
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Returns
// ErrUnknownSourceNode, ErrUnknownTargetNode, ErrSelfLoop or
// ErrDuplicateEdge.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	key := edgeKey{e.From, e.To}
	if _, exists := g.edgeIdx[key]; exists {
		return ErrDuplicateEdge
	}
	e.init()
	edge := &e
	g.edges = append(g.edges, edge)
	g.edgeIdx[key] = edge
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID. The pointer refers to the graph's
// own node, so evolutions may be mutated through it.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the directed edge from→to.
func (g *Graph) Edge(from, to string) (*Edge, bool) {
	e, ok := g.edgeIdx[edgeKey{from, to}]
	return e, ok
}

// EdgeBetween returns the edge joining a and b in either direction,
// preferring a→b.
func (g *Graph) EdgeBetween(a, b string) (*Edge, bool) {
	if e, ok := g.Edge(a, b); ok {
		return e, true
	}
	return g.Edge(b, a)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the targets of id's outgoing edges in insertion order.
// The returned slice must not be modified.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Predecessors returns the sources of id's incoming edges in insertion
// order. The returned slice must not be modified.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// OutEdges returns id's outgoing edges in insertion order.
func (g *Graph) OutEdges(id string) []*Edge {
	out := make([]*Edge, 0, len(g.outgoing[id]))
	for _, to := range g.outgoing[id] {
		out = append(out, g.edgeIdx[edgeKey{id, to}])
	}
	return out
}

// Neighbors returns the sorted, de-duplicated IDs adjacent to id in either
// direction.
func (g *Graph) Neighbors(id string) []string {
	out := make([]string, 0, len(g.outgoing[id])+len(g.incoming[id]))
	out = append(out, g.outgoing[id]...)
	out = append(out, g.incoming[id]...)
	slices.Sort(out)
	return slices.Compact(out)
}

// Degree returns the number of distinct neighbours of id.
func (g *Graph) Degree(id string) int { return len(g.Neighbors(id)) }

// Clone returns a deep copy: evolutions and metadata maps are copied, so the
// clone can be mutated independently.
func (g *Graph) Clone() *Graph {
	c := New(maps.Clone(g.meta))
	for _, id := range g.order {
		n := g.nodes[id].clone()
		c.nodes[id] = n
		c.order = append(c.order, id)
	}
	for _, e := range g.edges {
		ec := *e
		ec.Presence = e.Presence.Clone()
		ec.Meta = maps.Clone(e.Meta)
		edge := &ec
		c.edges = append(c.edges, edge)
		c.edgeIdx[edgeKey{e.From, e.To}] = edge
		c.outgoing[e.From] = append(c.outgoing[e.From], e.To)
		c.incoming[e.To] = append(c.incoming[e.To], e.From)
	}
	return c
}

// Breakpoints returns the sorted finite interval bounds of every node and
// edge evolution. These are the instants at which anything in the graph can
// change its definition.
func (g *Graph) Breakpoints() []float64 {
	var out []float64
	for _, id := range g.order {
		n := g.nodes[id]
		out = append(out, temporal.Breakpoints(n.Presence)...)
		out = append(out, temporal.Breakpoints(n.Position)...)
		out = append(out, temporal.Breakpoints(n.Size)...)
	}
	for _, e := range g.edges {
		out = append(out, temporal.Breakpoints(e.Presence)...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// NodesAt returns the nodes present at t in insertion order.
func (g *Graph) NodesAt(t float64) []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Presence.ValueAt(t) {
			out = append(out, n)
		}
	}
	return out
}

// EdgesAt returns the edges present at t whose endpoints are also present.
func (g *Graph) EdgesAt(t float64) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if !e.Presence.ValueAt(t) {
			continue
		}
		if g.nodes[e.From].Presence.ValueAt(t) && g.nodes[e.To].Presence.ValueAt(t) {
			out = append(out, e)
		}
	}
	return out
}

// Float reads a numeric metadata value, accepting the integer and float
// kinds JSON and TOML decoders produce. It returns def when the key is
// missing or not numeric.
func (m Metadata) Float(key string, def float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Text reads a string metadata value, or "" when missing.
func (m Metadata) Text(key string) string {
	s, _ := m[key].(string)
	return s
}
