// Package cache stores validated packing results so identical runs skip the
// solver.
//
// A [Cache] is a plain byte store with TTLs. Three implementations ship:
// [FileCache] for the CLI, [RedisCache] for shared deployments and
// [NullCache] when caching is disabled. Keys come from a [Keyer], which
// hashes every option that influences the solve.
//
// Cached payloads are result JSON; readers re-validate on decode, so a
// corrupted or tampered entry is treated as a miss rather than trusted.
package cache

import (
	"context"
	"time"
)

// TTLResult is how long a solved packing stays cached. Results are
// deterministic for a fixed key, so the TTL only bounds disk and memory use.
const TTLResult = 30 * 24 * time.Hour

// Cache is a key/value store for serialized results.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ResultKeyOpts lists every input that changes a solve's answer.
type ResultKeyOpts struct {
	XMin, XMax, YMin, YMax float64
	N                      int
	Backend                string
	Strategy               string
	Seed                   uint64
	TimeLimit              time.Duration
	Tolerance              float64
}

// Keyer derives cache keys.
type Keyer interface {
	ResultKey(opts ResultKeyOpts) string
}

// DefaultKeyer hashes options into "result:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(opts ResultKeyOpts) string {
	return hashKey("result", opts)
}
