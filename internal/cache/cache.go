// Package cache provides a small thread-safe in-memory cache used to memoize content hashes
// and to back the in-memory build store.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gruntwork-io/assetflow/telemetry"
	"golang.org/x/sync/singleflight"
)

// Cache - generic cache implementation
type Cache[V any] struct {
	Name  string
	Cache map[string]V
	Mutex *sync.RWMutex

	flight singleflight.Group
}

// NewCache - create new cache with generic type V
func NewCache[V any](name string) *Cache[V] {
	return &Cache[V]{
		Name:  name,
		Cache: make(map[string]V),
		Mutex: &sync.RWMutex{},
	}
}

// Get - fetch value from cache by key
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()

	value, found := c.Cache[key]

	tlm := telemetry.TelemeterFromContext(ctx)
	tlm.Count(ctx, fmt.Sprintf("%s_cache_get", c.Name), 1)

	if found {
		tlm.Count(ctx, fmt.Sprintf("%s_cache_hit", c.Name), 1)
	} else {
		tlm.Count(ctx, fmt.Sprintf("%s_cache_miss", c.Name), 1)
	}

	return value, found
}

// Put - put value into cache by key
func (c *Cache[V]) Put(ctx context.Context, key string, value V) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()

	telemetry.TelemeterFromContext(ctx).Count(ctx, fmt.Sprintf("%s_cache_put", c.Name), 1)
	c.Cache[key] = value
}

// GetOrCompute returns the cached value for key, computing and storing it on a miss.
// Concurrent misses of the same key share one computation. Errors are not cached.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, compute func() (V, error)) (V, error) {
	if value, found := c.Get(ctx, key); found {
		return value, nil
	}

	result, err, _ := c.flight.Do(key, func() (any, error) {
		c.Mutex.RLock()
		value, found := c.Cache[key]
		c.Mutex.RUnlock()

		if found {
			return value, nil
		}

		value, err := compute()
		if err != nil {
			return value, err
		}

		c.Put(ctx, key, value)

		return value, nil
	})

	value, _ := result.(V)

	return value, err
}

// Delete removes the key from the cache.
func (c *Cache[V]) Delete(key string) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()

	delete(c.Cache, key)
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()

	c.Cache = make(map[string]V)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()

	return len(c.Cache)
}

// Keys returns the cached keys in sorted order.
func (c *Cache[V]) Keys() []string {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()

	keys := make([]string, 0, len(c.Cache))
	for key := range c.Cache {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// ContextCache returns cache from the context. If the cache is nil, it creates a new instance.
func ContextCache[T any](ctx context.Context, key any) *Cache[T] {
	cacheInstance, ok := ctx.Value(key).(*Cache[T])
	if !ok || cacheInstance == nil {
		cacheInstance = NewCache[T](fmt.Sprintf("%v", key))
	}

	return cacheInstance
}
