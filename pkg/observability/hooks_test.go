package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	NoopSolveHooks{}.OnSolveStart(ctx, "ipopt", 5)
	NoopSolveHooks{}.OnSolveComplete(ctx, "ipopt", "converged", 1.5, time.Second)
	NoopCacheHooks{}.OnCacheHit(ctx, "result")
	NoopCacheHooks{}.OnCacheMiss(ctx, "result")
	NoopCacheHooks{}.OnCacheSet(ctx, "result", 1024)
	NoopAPIHooks{}.OnRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	_, ok := Solve().(NoopSolveHooks)
	assert.True(t, ok, "Solve() should default to no-op")
	_, ok = Cache().(NoopCacheHooks)
	assert.True(t, ok)
	_, ok = API().(NoopAPIHooks)
	assert.True(t, ok)

	p := NewPrometheus(prometheus.NewRegistry())
	SetSolveHooks(p)
	SetCacheHooks(p)
	SetAPIHooks(p)
	assert.Same(t, p, Solve())
	assert.Same(t, p, Cache())
	assert.Same(t, p, API())

	SetSolveHooks(nil)
	assert.Same(t, p, Solve(), "nil registration is ignored")

	Reset()
	_, ok = Solve().(NoopSolveHooks)
	assert.True(t, ok)
}

func TestPrometheusHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)
	ctx := context.Background()

	p.OnSolveStart(ctx, "baron", 5)
	p.OnSolveComplete(ctx, "baron", "converged", 1.85, 2*time.Second)
	p.OnSolveComplete(ctx, "baron", "timeout", 0, time.Minute)
	p.OnCacheHit(ctx, "result")
	p.OnCacheMiss(ctx, "result")
	p.OnCacheMiss(ctx, "result")
	p.OnRequest(ctx, "POST", "/v1/solve", 200, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.solvesStarted.WithLabelValues("baron")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.solves.WithLabelValues("baron", "timeout")))
	assert.Equal(t, 1.85, testutil.ToFloat64(p.radius.WithLabelValues("baron")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.cacheLookups.WithLabelValues("result", "miss")))

	expected := `
# HELP circlepack_api_requests_total HTTP requests by route and status code
# TYPE circlepack_api_requests_total counter
circlepack_api_requests_total{code="200",method="POST",route="/v1/solve"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "circlepack_api_requests_total"))
}
