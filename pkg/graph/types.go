package graph

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	"github.com/matzehuels/dynalayout/pkg/temporal"
)

// =============================================================================
// Graph - Dynamic Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for dynamic graphs.
//
// The format is designed for round-trip fidelity: every function of every
// evolution, including its kind and kernel, survives export and re-import.
// Nodes and edges keep the graph's insertion order, which layouts depend on.
type Graph struct {
	Meta  map[string]any `json:"meta,omitempty"`
	Nodes []Node         `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

// Node is a serialized dynamic node.
type Node struct {
	ID       string                `json:"id"`
	Presence *Track[bool]          `json:"presence,omitempty"`
	Position *Track[dygraph.Point] `json:"position,omitempty"`
	Label    *Track[string]        `json:"label,omitempty"`
	Size     *Track[float64]       `json:"size,omitempty"`
	Meta     map[string]any        `json:"meta,omitempty"`
}

// Edge is a serialized dynamic edge.
type Edge struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Presence *Track[bool]   `json:"presence,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// =============================================================================
// Track - Evolution Serialization
// =============================================================================

// Track is a serialized evolution.
type Track[V comparable] struct {
	Default  V            `json:"default"`
	Segments []Segment[V] `json:"segments,omitempty"`
}

// Segment is one function of a track. To is set for interpolating
// segments; Interp defaults to linear.
type Segment[V comparable] struct {
	Interval temporal.Interval      `json:"interval"`
	Value    V                      `json:"value"`
	To       *V                     `json:"to,omitempty"`
	Interp   temporal.Interpolation `json:"interp,omitempty"`
}

// TrackOf serializes an evolution.
func TrackOf[V comparable](e *temporal.Evolution[V]) *Track[V] {
	t := &Track[V]{Default: e.Default()}
	for _, f := range e.Functions() {
		s := Segment[V]{Interval: f.Interval, Value: f.From}
		if f.Kind == temporal.KindRect {
			to := f.To
			s.To = &to
			s.Interp = f.Interp
		}
		t.Segments = append(t.Segments, s)
	}
	return t
}

// Evolution rebuilds the evolution. A nil track yields an empty evolution
// with default def. Overlapping segments fail with DEFINITION_CONFLICT.
func (t *Track[V]) Evolution(def V) (*temporal.Evolution[V], error) {
	if t == nil {
		return temporal.NewEvolution(def), nil
	}
	e := temporal.NewEvolution(t.Default)
	for i, s := range t.Segments {
		f := temporal.Const(s.Interval, s.Value)
		if s.To != nil {
			f = temporal.Rect(s.Interval, s.Value, *s.To, s.Interp)
		}
		if err := e.Insert(f); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return e, nil
}

// =============================================================================
// dygraph ↔ Graph Conversion
// =============================================================================

// FromDyGraph converts a dynamic graph to its serialization format.
func FromDyGraph(g *dygraph.Graph) Graph {
	out := Graph{
		Meta:  copyMeta(g.Meta()),
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{
			ID:       n.ID,
			Presence: TrackOf(n.Presence),
			Position: TrackOf(n.Position),
			Label:    TrackOf(n.Label),
			Size:     TrackOf(n.Size),
			Meta:     copyMeta(n.Meta),
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{
			From:     e.From,
			To:       e.To,
			Presence: TrackOf(e.Presence),
			Meta:     copyMeta(e.Meta),
		})
	}
	return out
}

// ToDyGraph converts a Graph to a dynamic graph.
// Returns an error for malformed tracks or structural violations.
func ToDyGraph(gj Graph) (*dygraph.Graph, error) {
	g := dygraph.New(copyMeta(gj.Meta))

	for _, nj := range gj.Nodes {
		n := dygraph.Node{ID: nj.ID, Meta: copyMeta(nj.Meta)}
		var err error
		if n.Presence, err = nj.Presence.Evolution(true); err != nil {
			return nil, fmt.Errorf("node %s presence: %w", nj.ID, err)
		}
		if n.Position, err = nj.Position.Evolution(dygraph.Point{}); err != nil {
			return nil, fmt.Errorf("node %s position: %w", nj.ID, err)
		}
		if n.Label, err = nj.Label.Evolution(""); err != nil {
			return nil, fmt.Errorf("node %s label: %w", nj.ID, err)
		}
		if n.Size, err = nj.Size.Evolution(1.0); err != nil {
			return nil, fmt.Errorf("node %s size: %w", nj.ID, err)
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}

	for _, ej := range gj.Edges {
		presence, err := ej.Presence.Evolution(true)
		if err != nil {
			return nil, fmt.Errorf("edge %s→%s presence: %w", ej.From, ej.To, err)
		}
		e := dygraph.Edge{From: ej.From, To: ej.To, Presence: presence, Meta: copyMeta(ej.Meta)}
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}

	return g, nil
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}
