package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dynalayout/pkg/graph"
	"github.com/matzehuels/dynalayout/pkg/observability"
	"github.com/matzehuels/dynalayout/pkg/render/nodelink"
)

// Render draws the snapshot of a layout at opts.Time in every requested
// format. Formats render concurrently; the first failure cancels the rest.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	g, err := LayoutGraph(l)
	if err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(g, nodelink.Options{Time: opts.Time, Scale: opts.Scale, Detailed: opts.Detailed})

	draw := map[string]func(context.Context) ([]byte, error){
		FormatDOT:  func(context.Context) ([]byte, error) { return []byte(dot), nil },
		FormatSVG:  func(ctx context.Context) ([]byte, error) { return nodelink.RenderSVG(ctx, dot) },
		FormatJSON: func(context.Context) ([]byte, error) { return graph.MarshalLayout(l) },
	}

	for _, format := range opts.Formats {
		if _, ok := draw[format]; !ok {
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
	}

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))
	eg, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		fn := draw[format]
		eg.Go(func() error {
			start := time.Now()
			data, err := fn(ctx)
			observability.Layout().OnRenderComplete(ctx, format, time.Since(start), err)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}
