package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/gridclip/internal/log"
)

const DefaultExpiration = 2 * time.Second
const DefaultCleanupInterval = time.Second

// NewInMemoryCacheManager creates a cache whose janitor runs every cleanupInterval.
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// InMemoryCacheManager implements CacheManager on go-cache.
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
}

// Get returns the live value stored under key.
func (c *InMemoryCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	v, _, ok := c.GetWithExpiration(ctx, key)
	return v, ok
}

// GetWithExpiration also returns when the entry expires. The time is zero
// for entries stored without expiry.
func (c *InMemoryCacheManager[K, V]) GetWithExpiration(_ context.Context, key K) (V, time.Time, bool) {
	var zero V

	value, expires, found := c.cache.GetWithExpiration(string(key))
	if !found {
		return zero, time.Time{}, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "cache", c.useCase, "key", key)
		return zero, time.Time{}, false
	}

	log.Debug(log.CatCache, "cache hit", "cache", c.useCase, "key", key)
	return v, expires, true
}

// Set stores value under key for ttl. gocache.NoExpiration keeps it until
// deleted.
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete removes keys. Expiry callbacks fire for entries that were present.
func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
}

// Flush removes every entry without firing expiry callbacks.
func (c *InMemoryCacheManager[K, V]) Flush(context.Context) {
	c.cache.Flush()
}

// OnExpire registers fn to run when an entry is deleted or swept by the
// janitor. It replaces any previous callback.
func (c *InMemoryCacheManager[K, V]) OnExpire(fn func(key K, value V)) {
	c.cache.OnEvicted(func(key string, value any) {
		v, ok := value.(V)
		if !ok {
			return
		}
		log.Debug(log.CatCache, "cache entry evicted", "cache", c.useCase, "key", key)
		fn(K(key), v)
	})
}

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)
