package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/dynalayout/pkg/dygraph"
	"github.com/matzehuels/dynalayout/pkg/graph"
	"github.com/matzehuels/dynalayout/pkg/multilevel"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs the multilevel engine on a copy of g and exports the
// result. g itself is never modified.
func GenerateLayout(ctx context.Context, g *dygraph.Graph, opts Options) (graph.Layout, error) {
	mlOpts, err := opts.MultilevelOptions()
	if err != nil {
		return graph.Layout{}, err
	}

	work := g.Clone()
	res, err := multilevel.Run(ctx, work, mlOpts)
	if err != nil {
		return graph.Layout{}, err
	}
	return exportLayout(work, res, opts), nil
}

// exportLayout converts a finished run to the serialization format.
func exportLayout(g *dygraph.Graph, res *multilevel.Result, opts Options) graph.Layout {
	levels := make([]graph.LevelStat, len(res.Levels))
	for i, l := range res.Levels {
		levels[i] = graph.LevelStat{
			Level:      l.Index,
			Nodes:      l.Nodes,
			Edges:      l.Edges,
			Iterations: l.Iterations,
		}
	}
	return graph.Layout{
		Graph:      graph.FromDyGraph(g),
		Levels:     levels,
		StopReason: res.StopReason.String(),
		Policy:     opts.Policy,
		Seed:       opts.Seed,
		DurationMS: res.Duration.Milliseconds(),
	}
}

// LayoutGraph rebuilds the laid-out dynamic graph from a layout.
func LayoutGraph(l graph.Layout) (*dygraph.Graph, error) {
	g, err := graph.ToDyGraph(l.Graph)
	if err != nil {
		return nil, fmt.Errorf("layout graph: %w", err)
	}
	return g, nil
}
