// Package observability provides hook points for metrics and tracing.
//
// The library packages stay free of any observability framework: they
// emit events through small hook interfaces, and the binary decides at
// startup what receives them (OpenTelemetry, Prometheus, a log counter,
// or nothing). Unregistered hooks default to no-ops, so call sites never
// nil-check.
//
// Register hooks once at startup:
//
//	observability.SetPipelineHooks(&myPipelineHooks{})
//	observability.SetCacheHooks(&myCacheHooks{})
//
// Libraries emit events around the work they do:
//
//	observability.Pipeline().OnLayoutStart(ctx, engine, nodeCount)
//	// ... run the engine ...
//	observability.Pipeline().OnLayoutComplete(ctx, engine, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the geometry pipeline.
type PipelineHooks interface {
	// Layout events
	OnLayoutStart(ctx context.Context, engine string, nodeCount int)
	OnLayoutComplete(ctx context.Context, engine string, duration time.Duration, err error)

	// Route events
	OnRouteStart(ctx context.Context, edgeCount int)
	OnRouteComplete(ctx context.Context, edgeCount int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. The keyType identifies
// the cached artifact kind ("layout", "routes", "diagram").
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the snapshot API server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                     {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnRouteStart(context.Context, int)                              {}
func (NoopPipelineHooks) OnRouteComplete(context.Context, int, time.Duration, error)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// reg holds the active hooks. Reads vastly outnumber writes (writes
// happen once at startup), hence the RWMutex.
var reg = struct {
	sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}{
	pipeline: NoopPipelineHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
}

// SetPipelineHooks registers pipeline hooks. Nil is ignored so callers
// can pass an optional dependency through unconditionally.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	reg.Lock()
	reg.pipeline = h
	reg.Unlock()
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	reg.Lock()
	reg.cache = h
	reg.Unlock()
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h == nil {
		return
	}
	reg.Lock()
	reg.http = h
	reg.Unlock()
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	reg.RLock()
	defer reg.RUnlock()
	return reg.pipeline
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	reg.RLock()
	defer reg.RUnlock()
	return reg.cache
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	reg.RLock()
	defer reg.RUnlock()
	return reg.http
}

// Reset restores the no-op defaults. Tests use it to isolate state.
func Reset() {
	reg.Lock()
	defer reg.Unlock()
	reg.pipeline = NoopPipelineHooks{}
	reg.cache = NoopCacheHooks{}
	reg.http = NoopHTTPHooks{}
}
