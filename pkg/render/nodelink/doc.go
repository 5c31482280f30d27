// Package nodelink renders snapshots of a laid-out dynamic graph as
// node-link diagrams.
//
// # Overview
//
// A dynamic graph has one drawing per instant. [ToDOT] takes the snapshot at
// [Options.Time]: the nodes present then, each pinned at its position
// trajectory's value, and the edges whose endpoints are both present. The
// DOT output is undirected and uses neato, so Graphviz draws the nodes
// exactly where the multilevel layout put them instead of computing its own
// layout.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Time: 4.5})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Labels come from the node's label evolution and fall back to the node ID.
// Node width follows the size evolution; edge pen width follows the edge
// weight.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package nodelink
