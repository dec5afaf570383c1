package cache

import (
	"context"
)

const (
	// HashCacheContextKey holds the content hash memo shared by one command invocation.
	HashCacheContextKey ctxKey = iota

	hashCacheName = "hash"
)

type ctxKey byte

func (key ctxKey) String() string {
	if key == HashCacheContextKey {
		return hashCacheName
	}

	return "unknown"
}

// ContextWithCache returns a context carrying a fresh content hash memo.
func ContextWithCache[V any](ctx context.Context) context.Context {
	return context.WithValue(ctx, HashCacheContextKey, NewCache[V](hashCacheName))
}
