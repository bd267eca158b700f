// Package observability provides hooks for metrics around solves, cache
// lookups and API requests.
//
// Libraries call the registered hooks; the defaults do nothing. Binaries
// that want metrics register an implementation at startup, for example the
// Prometheus one from [NewPrometheus]:
//
//	m := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	observability.SetSolveHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetAPIHooks(m)
//
// Library code emits events without knowing the backend:
//
//	observability.Solve().OnSolveStart(ctx, backend, n)
//	// ... run the adapter ...
//	observability.Solve().OnSolveComplete(ctx, backend, status, radius, elapsed)
package observability

import (
	"context"
	"sync"
	"time"
)

// SolveHooks receives events from the pipeline's solve stage.
type SolveHooks interface {
	OnSolveStart(ctx context.Context, backend string, n int)
	// OnSolveComplete reports the final status ("converged", "infeasible",
	// "timeout", "backend_error", "invalid") and the validated radius, or 0.
	OnSolveComplete(ctx context.Context, backend, status string, radius float64, duration time.Duration)
}

// CacheHooks receives events from result cache lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// APIHooks receives events from the HTTP API.
type APIHooks interface {
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopSolveHooks ignores all events.
type NoopSolveHooks struct{}

func (NoopSolveHooks) OnSolveStart(context.Context, string, int)                               {}
func (NoopSolveHooks) OnSolveComplete(context.Context, string, string, float64, time.Duration) {}

// NoopCacheHooks ignores all events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopAPIHooks ignores all events.
type NoopAPIHooks struct{}

func (NoopAPIHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

var (
	solveHooks SolveHooks = NoopSolveHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	apiHooks   APIHooks   = NoopAPIHooks{}
	hooksMu    sync.RWMutex
)

// SetSolveHooks registers solve hooks. nil is ignored.
func SetSolveHooks(h SolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		solveHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetAPIHooks registers API hooks. nil is ignored.
func SetAPIHooks(h APIHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		apiHooks = h
	}
}

// Solve returns the registered solve hooks.
func Solve() SolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return solveHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// API returns the registered API hooks.
func API() APIHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return apiHooks
}

// Reset restores the no-op defaults. Tests use it.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	solveHooks = NoopSolveHooks{}
	cacheHooks = NoopCacheHooks{}
	apiHooks = NoopAPIHooks{}
}
