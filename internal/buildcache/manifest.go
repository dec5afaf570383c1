package buildcache

import (
	"context"
	"sort"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/hashing"
	"github.com/vmihailenco/msgpack/v5"
)

const manifestFormat = 1

// Manifest lists the outputs produced by one build step.
type Manifest struct {
	// Outputs maps an output url to the object holding its bytes.
	Outputs map[string]hashing.ObjectID `msgpack:"outputs"`
	Format  int                         `msgpack:"format"`
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Format: manifestFormat, Outputs: make(map[string]hashing.ObjectID)}
}

// Add records the object of an output url.
func (manifest *Manifest) Add(url string, id hashing.ObjectID) {
	manifest.Outputs[url] = id
}

// URLs returns the output urls in sorted order.
func (manifest *Manifest) URLs() []string {
	urls := make([]string, 0, len(manifest.Outputs))
	for url := range manifest.Outputs {
		urls = append(urls, url)
	}

	sort.Strings(urls)

	return urls
}

// PutManifest stores the manifest under the build key of its step.
func PutManifest(ctx context.Context, store Store, key hashing.ObjectID, manifest *Manifest) error {
	data, err := msgpack.Marshal(manifest)
	if err != nil {
		return errors.New(err)
	}

	return store.Put(ctx, key, data)
}

// GetManifest loads the manifest stored under a build key.
func GetManifest(ctx context.Context, store Store, key hashing.ObjectID) (*Manifest, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{}
	if err := msgpack.Unmarshal(data, manifest); err != nil {
		return nil, errors.New(CorruptManifestError{Key: key, Err: err})
	}

	if manifest.Outputs == nil {
		manifest.Outputs = make(map[string]hashing.ObjectID)
	}

	return manifest, nil
}

// HasOutputs reports whether the manifest under key exists and every output it lists is stored.
func HasOutputs(ctx context.Context, store Store, key hashing.ObjectID) bool {
	manifest, err := GetManifest(ctx, store, key)
	if err != nil {
		return false
	}

	for _, id := range manifest.Outputs {
		if !store.Has(ctx, id) {
			return false
		}
	}

	return true
}
