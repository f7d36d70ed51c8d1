// Package cachemanager holds short-lived state keyed by string, such as the
// ranges highlighted after a copy.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a keyed store whose entries expire.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithExpiration(ctx context.Context, key K) (V, time.Time, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
}
