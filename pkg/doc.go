// Package pkg provides the core libraries for dynalayout, a multilevel
// layout engine for dynamic graphs.
//
// # Overview
//
// A dynamic graph is a graph whose nodes and edges appear, disappear and
// change attributes over continuous time. Every attribute is an evolution:
// a set of non-overlapping functions of time plus a default. dynalayout
// computes a position evolution for every node so that the drawing changes
// smoothly while the graph does.
//
// The pkg directory is organized into three areas:
//
//  1. Temporal model: [temporal], [dygraph], [discretise]
//  2. Layout engine: [coarsen], [placement], [solver], [multilevel]
//  3. Supporting surfaces: [graph], [pipeline], [cache], [render/nodelink],
//     [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	graph.json
//	     ↓
//	[graph] package (decode into a dygraph.Graph)
//	     ↓
//	[discretise] package (optional: slice into constant time slices)
//	     ↓
//	[coarsen] package (hierarchy of smaller graphs)
//	     ↓
//	[multilevel] package (solve coarsest, then place + solve per level)
//	     ↓
//	[render/nodelink] package (DOT/SVG snapshot at an instant)
//
// [pipeline] runs these stages with caching and is shared by the CLI and
// the HTTP API.
//
// # Quick Start
//
// Lay out a graph file and render the snapshot at t=5:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/dynalayout/pkg/cache"
//	    "github.com/matzehuels/dynalayout/pkg/graph"
//	    "github.com/matzehuels/dynalayout/pkg/pipeline"
//	)
//
//	g, _ := graph.ReadGraphFile("graph.json")
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, _ := runner.Execute(context.Background(), g, pipeline.Options{
//	    Policy:  "solar_merger",
//	    Formats: []string{"svg"},
//	    Time:    5,
//	})
//	os.WriteFile("snapshot.svg", res.Artifacts["svg"], 0o644)
//
// # Main Packages
//
// ## Temporal Model
//
// [temporal] - Intervals with open or closed ends, constant and
// interpolating functions over them, and evolutions: ordered,
// non-overlapping function sets with a default. Analysis helpers merge
// functions and compute the intervals on which an evolution holds a value.
//
// [dygraph] - The dynamic graph: nodes with presence, position, label and
// size evolutions, edges with presence evolutions, and metadata.
//
// [discretise] - Slices a graph into constant pieces around snapshot times
// or over explicit intervals.
//
// ## Layout Engine
//
// [coarsen] - Builds a hierarchy of progressively smaller graphs with the
// independent set, Walshaw or solar merger policies, recording which
// finer nodes every cluster absorbed.
//
// [placement] - Projects cluster positions onto the finer level:
// barycentric (weighted by cluster neighbours) or identity.
//
// [solver] - Stress-style force solver that refines node trajectories over
// time frames.
//
// [multilevel] - Drives coarsening, placement, cooling and solving across
// the hierarchy.
//
// ## Supporting Surfaces
//
// [graph] - JSON wire format for graphs and layouts.
//
// [cache] - Cache interface with file, Redis and null backends, plus
// content-addressed keys.
//
// [render/nodelink] - Snapshot drawings through Graphviz.
//
// [observability] - Hooks for layout, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/coarsen/...            # Specific package
//	go test -run Example                 # Examples only
//
// [temporal]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/temporal
// [dygraph]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/dygraph
// [discretise]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/discretise
// [coarsen]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/coarsen
// [placement]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/placement
// [solver]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/solver
// [multilevel]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/multilevel
// [graph]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/render/nodelink
// [observability]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/dynalayout/pkg/buildinfo
package pkg
