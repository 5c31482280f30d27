package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event as a structured debug record. Events that
// carry an error are logged at error level and 5xx responses at warn, so
// failures show up without -v.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to a "hooks" sub-logger of l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

var (
	_ LayoutHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)

func (h *LogHooks) done(level log.Level, msg string, err error, keyvals ...any) {
	if err != nil {
		h.logger.Error(msg, append(keyvals, "err", err)...)
		return
	}
	h.logger.Log(level, msg, keyvals...)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodeCount int) {
	h.logger.Debug("layout started", "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, levels int, d time.Duration, err error) {
	h.done(log.DebugLevel, "layout finished", err, "levels", levels, "took", d)
}

func (h *LogHooks) OnCoarsenComplete(_ context.Context, levels, coarsestNodes int, d time.Duration) {
	h.logger.Debug("hierarchy built", "levels", levels, "coarsest_nodes", coarsestNodes, "took", d)
}

func (h *LogHooks) OnLevelComplete(_ context.Context, level, nodeCount int, d time.Duration, err error) {
	h.done(log.DebugLevel, "level solved", err, "level", level, "nodes", nodeCount, "took", d)
}

func (h *LogHooks) OnDiscretiseComplete(_ context.Context, slices int, d time.Duration, err error) {
	h.done(log.DebugLevel, "discretised", err, "slices", slices, "took", d)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.done(log.DebugLevel, "rendered", err, "format", format, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "stage", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "stage", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "stage", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	level := log.DebugLevel
	if status >= 500 {
		level = log.WarnLevel
	}
	h.logger.Log(level, "response", "method", method, "path", path, "status", status, "took", d)
}
