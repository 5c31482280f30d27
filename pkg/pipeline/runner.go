package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/dynalayout/pkg/cache"
	"github.com/matzehuels/dynalayout/pkg/discretise"
	"github.com/matzehuels/dynalayout/pkg/dygraph"
	errs "github.com/matzehuels/dynalayout/pkg/errors"
	"github.com/matzehuels/dynalayout/pkg/graph"
	"github.com/matzehuels/dynalayout/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeLayout     = "layout"
	keyTypeDiscretise = "discretise"
	keyTypeArtifact   = "artifact"
)

// Runner runs the pipeline stages against a shared cache. The CLI and the
// API server both go through it.
//
// A Runner holds no per-request state and may be used from many goroutines.
// Concurrent layouts of the same graph with the same options are computed
// once and shared.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	layouts singleflight.Group
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// selects the default key scheme and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// stage describes one cacheable pipeline step for [runStage].
type stage[T any] struct {
	key     string
	keyType string
	ttl     time.Duration
	refresh bool
	decode  func([]byte) (T, error)
	encode  func(T) ([]byte, error)
	compute func() (T, error)
}

// runStage serves s from the cache when possible and otherwise computes and
// stores it. Undecodable entries are recomputed.
func runStage[T any](ctx context.Context, r *Runner, s stage[T]) (T, bool, error) {
	if !s.refresh {
		if data, ok := r.lookup(ctx, s.key, s.keyType); ok {
			v, err := s.decode(data)
			if err == nil {
				return v, true, nil
			}
			r.Logger.Warn("discarding unreadable cache entry", "kind", s.keyType, "key", s.key, "error", err)
		}
	}
	v, err := s.compute()
	if err != nil {
		var zero T
		return zero, false, err
	}
	if data, err := s.encode(v); err == nil {
		r.store(ctx, s.key, s.keyType, data, s.ttl)
	}
	return v, false, nil
}

// Execute lays out g and renders the result.
func (r *Runner) Execute(ctx context.Context, g *dygraph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	graphHash, err := hashGraph(g)
	if err != nil {
		return nil, err
	}
	res := &Result{GraphHash: graphHash}
	res.Stats.NodeCount = g.NodeCount()
	res.Stats.EdgeCount = g.EdgeCount()

	start := time.Now()
	layout, hit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout = layout
	res.Stats.Levels = len(layout.Levels)
	res.Stats.LayoutTime = time.Since(start)
	res.CacheInfo.LayoutHit = hit
	r.Logger.Info("computed layout",
		"nodes", res.Stats.NodeCount,
		"levels", res.Stats.Levels,
		"cached", hit,
		"duration", res.Stats.LayoutTime)

	start = time.Now()
	res.Artifacts, res.CacheInfo.RenderHit, err = r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Stats.RenderTime = time.Since(start)
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"time", opts.Time,
		"cached", res.CacheInfo.RenderHit,
		"duration", res.Stats.RenderTime)
	return res, nil
}

// LayoutWithCacheInfo lays out g and reports whether the layout came from
// the cache. g is never modified.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *dygraph.Graph, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	graphHash, err := hashGraph(g)
	if err != nil {
		return graph.Layout{}, false, err
	}
	key := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	return runStage(ctx, r, stage[graph.Layout]{
		key:     key,
		keyType: keyTypeLayout,
		ttl:     cache.LayoutTTL,
		refresh: opts.Refresh,
		decode:  graph.UnmarshalLayout,
		encode:  graph.MarshalLayout,
		compute: func() (graph.Layout, error) {
			v, err, shared := r.layouts.Do(key, func() (any, error) {
				return GenerateLayout(ctx, g, opts)
			})
			if shared {
				opts.Logger.Debug("joined in-flight layout", "key", key)
			}
			if err != nil {
				return graph.Layout{}, err
			}
			return v.(graph.Layout), nil
		},
	})
}

// Layout is LayoutWithCacheInfo without the hit flag.
func (r *Runner) Layout(ctx context.Context, g *dygraph.Graph, opts Options) (graph.Layout, error) {
	layout, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return layout, err
}

// DiscretiseWithCacheInfo slices g at opts.SnapTimes (widened by
// opts.Radius) or over opts.Intervals, and reports whether the result came
// from the cache.
func (r *Runner) DiscretiseWithCacheInfo(ctx context.Context, g *dygraph.Graph, opts Options) (*dygraph.Graph, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForDiscretise(); err != nil {
		return nil, false, err
	}
	if len(opts.SnapTimes) == 0 && len(opts.Intervals) == 0 {
		return nil, false, errs.New(errs.ErrCodeInvalidInput, "discretise needs snap_times or intervals")
	}
	graphHash, err := hashGraph(g)
	if err != nil {
		return nil, false, err
	}

	return runStage(ctx, r, stage[*dygraph.Graph]{
		key:     r.Keyer.DiscretiseKey(graphHash, opts.DiscretiseKeyOpts()),
		keyType: keyTypeDiscretise,
		ttl:     cache.LayoutTTL,
		refresh: opts.Refresh,
		decode:  func(b []byte) (*dygraph.Graph, error) { return graph.ReadGraph(bytes.NewReader(b)) },
		encode:  graph.MarshalGraph,
		compute: func() (*dygraph.Graph, error) {
			start := time.Now()
			sliced, n, err := discretiseGraph(g, opts)
			observability.Layout().OnDiscretiseComplete(ctx, n, time.Since(start), err)
			if err == nil {
				opts.Logger.Debug("discretised graph", "slices", n, "duration", time.Since(start))
			}
			return sliced, err
		},
	})
}

// Discretise is DiscretiseWithCacheInfo without the hit flag.
func (r *Runner) Discretise(ctx context.Context, g *dygraph.Graph, opts Options) (*dygraph.Graph, error) {
	sliced, _, err := r.DiscretiseWithCacheInfo(ctx, g, opts)
	return sliced, err
}

func discretiseGraph(g *dygraph.Graph, opts Options) (*dygraph.Graph, int, error) {
	if len(opts.SnapTimes) > 0 {
		out, err := discretise.WithSnapTimes(g, opts.SnapTimes, opts.Radius)
		return out, len(opts.SnapTimes), err
	}
	ivs, err := opts.ParsedIntervals()
	if err != nil {
		return nil, 0, err
	}
	out, err := discretise.WithIntervals(g, ivs)
	return out, len(ivs), err
}

// RenderWithCacheInfo renders every requested format. It reports a hit only
// when all formats came from the cache; otherwise everything is re-rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	data, err := graph.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)
	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, ok := r.lookup(ctx, keyFor(format), keyTypeArtifact)
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, layout, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		r.store(ctx, keyFor(format), keyTypeArtifact, data, cache.ArtifactTTL)
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key and reports the outcome to the cache hooks. Backend
// errors count as misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes key and reports it to the cache hooks. Failures are logged,
// never returned.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func hashGraph(g *dygraph.Graph) (string, error) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return "", fmt.Errorf("serialize graph for cache key: %w", err)
	}
	return cache.Hash(data), nil
}
