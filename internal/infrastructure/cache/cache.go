package cache

import (
	"context"
	"time"
)

// Cache is the reference-data cache capability. Only slow-changing catalog
// reads go through it; ledger state is always read from the database so a
// stale cache can never affect stock arithmetic.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value under the key for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate removes the given keys. Missing keys are not an error.
	Invalidate(ctx context.Context, keys ...string) error
}
