package buildcache

import (
	"context"
	"slices"

	"github.com/gruntwork-io/assetflow/internal/cache"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/hashing"
)

const memoryStoreName = "build_store"

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	objects *cache.Cache[[]byte]
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: cache.NewCache[[]byte](memoryStoreName)}
}

// Has reports whether id is present.
func (store *MemoryStore) Has(ctx context.Context, id hashing.ObjectID) bool {
	_, ok := store.objects.Get(ctx, id.String())
	return ok
}

// Get returns a copy of the object stored under id.
func (store *MemoryStore) Get(ctx context.Context, id hashing.ObjectID) ([]byte, error) {
	data, ok := store.objects.Get(ctx, id.String())
	if !ok {
		return nil, errors.New(NotFoundError{ID: id})
	}

	return slices.Clone(data), nil
}

// Put stores a copy of data under id.
func (store *MemoryStore) Put(ctx context.Context, id hashing.ObjectID, data []byte) error {
	if store.Has(ctx, id) {
		return nil
	}

	store.objects.Put(ctx, id.String(), slices.Clone(data))

	return nil
}

// Len returns the number of stored objects.
func (store *MemoryStore) Len() int {
	return store.objects.Len()
}
