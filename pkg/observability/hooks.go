// Package observability lets a binary observe layout runs, cache traffic
// and API requests without the engine depending on a metrics backend.
//
// The engine packages call the registered hooks; main decides what the
// hooks do. Nothing is registered by default, so every call is a no-op
// until SetLayoutHooks, SetCacheHooks or SetHTTPHooks installs something.
// [LogHooks] is the implementation the CLI installs; it writes each event
// as a structured log record.
//
//	observability.SetLayoutHooks(observability.NewLogHooks(logger))
//
//	observability.Layout().OnLayoutStart(ctx, g.NodeCount())
//	// coarsen, place, solve
//	observability.Layout().OnLayoutComplete(ctx, levels, time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// LayoutHooks receives events from the multilevel layout engine and the
// pipeline stages around it.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, levels int, duration time.Duration, err error)

	// OnCoarsenComplete fires once the hierarchy is final.
	OnCoarsenComplete(ctx context.Context, levels int, coarsestNodes int, duration time.Duration)
	// OnLevelComplete fires after a level has been placed and solved.
	OnLevelComplete(ctx context.Context, level, nodeCount int, duration time.Duration, err error)

	OnDiscretiseComplete(ctx context.Context, slices int, duration time.Duration, err error)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// CacheHooks receives pipeline cache traffic. keyType is the cached
// stage: "layout", "discretise" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// NoopLayoutHooks ignores every event. Embed it to implement a subset.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, int)                              {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, int, time.Duration, error)     {}
func (NoopLayoutHooks) OnCoarsenComplete(context.Context, int, int, time.Duration)      {}
func (NoopLayoutHooks) OnLevelComplete(context.Context, int, int, time.Duration, error) {}
func (NoopLayoutHooks) OnDiscretiseComplete(context.Context, int, time.Duration, error) {}
func (NoopLayoutHooks) OnRenderComplete(context.Context, string, time.Duration, error)  {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// slot holds one registered hook set. Reads are lock-free because hooks
// are consulted on every level and every request.
type slot[T any] struct {
	def T
	cur atomic.Pointer[T]
}

func (s *slot[T]) get() T {
	if p := s.cur.Load(); p != nil {
		return *p
	}
	return s.def
}

func (s *slot[T]) set(h T) { s.cur.Store(&h) }
func (s *slot[T]) reset()  { s.cur.Store(nil) }

var (
	layoutSlot = slot[LayoutHooks]{def: NoopLayoutHooks{}}
	cacheSlot  = slot[CacheHooks]{def: NoopCacheHooks{}}
	httpSlot   = slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetLayoutHooks installs h. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		layoutSlot.set(h)
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

func Layout() LayoutHooks { return layoutSlot.get() }
func Cache() CacheHooks   { return cacheSlot.get() }
func HTTP() HTTPHooks     { return httpSlot.get() }

// Reset restores the no-op hooks. Tests use it to undo registrations.
func Reset() {
	layoutSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
