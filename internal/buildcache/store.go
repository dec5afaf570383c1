// Package buildcache stores compiled outputs and build manifests addressed by object id.
package buildcache

import (
	"context"

	"github.com/gruntwork-io/assetflow/internal/hashing"
)

// Store is a content addressed blob store. Puts of an existing id are no-ops,
// so concurrent writers of the same content never conflict.
type Store interface {
	// Put stores data under id.
	Put(ctx context.Context, id hashing.ObjectID, data []byte) error
	// Get returns the data stored under id or NotFoundError.
	Get(ctx context.Context, id hashing.ObjectID) ([]byte, error)
	// Has reports whether id is present.
	Has(ctx context.Context, id hashing.ObjectID) bool
}

// PutContent stores data under its own digest and returns that digest.
func PutContent(ctx context.Context, store Store, data []byte) (hashing.ObjectID, error) {
	id := hashing.Sum(data)

	if err := store.Put(ctx, id, data); err != nil {
		return id, err
	}

	return id, nil
}
