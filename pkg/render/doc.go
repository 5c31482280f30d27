// Package render groups the output renderers for laid-out dynamic graphs.
//
// The [nodelink] subpackage draws a snapshot of the graph at a chosen time
// as a Graphviz node-link diagram with pinned node positions:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Time: 3})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The JSON layout format itself lives in package graph.
//
// [nodelink]: github.com/matzehuels/dynalayout/pkg/render/nodelink
package render
