// Package dygraph provides the dynamic graph model: nodes and edges whose
// presence and attributes are [temporal.Evolution] values.
//
// # Overview
//
// A [Graph] holds [Node] and [Edge] values keyed by ID. Each node carries
// four evolutions:
//
//   - Presence (bool, default false): where the node exists
//   - Position ([Point]): where the node is drawn
//   - Label (string)
//   - Size (float64, default 1)
//
// Edges carry a presence evolution only. A node or edge with no presence
// coverage at time t does not exist at t.
//
//	g := dygraph.New(nil)
//	n := dygraph.NewNode("a")
//	_ = n.Presence.Insert(temporal.Const(temporal.Closed(0, 17), true))
//	_ = g.AddNode(n)
//
// # Weights
//
// Coarsening reads node and edge weights from Meta["weight"]; absent
// weights count as 1.
//
// # Ordering
//
// [Graph.Nodes] and [Graph.Edges] return elements in insertion order and
// [Graph.Neighbors] returns sorted IDs, so algorithms that iterate the graph
// are deterministic for a fixed random seed.
package dygraph
