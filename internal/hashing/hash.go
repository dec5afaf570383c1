package hashing

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"slices"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/cache"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// hashFormat is mixed into every hash so that changing the canonical form invalidates old hashes.
const hashFormat = 1

// ObjectID is a content address.
type ObjectID [sha256.Size]byte

// Sum returns the content address of data.
func Sum(data []byte) ObjectID {
	return sha256.Sum256(data)
}

// ParseObjectID parses the hex form of an object id.
func ParseObjectID(str string) (ObjectID, error) {
	var id ObjectID

	raw, err := hex.DecodeString(str)
	if err != nil {
		return id, errors.New(err)
	}

	if len(raw) != len(id) {
		return id, errors.Errorf("object id %q has %d bytes, want %d", str, len(raw), len(id))
	}

	copy(id[:], raw)

	return id, nil
}

func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the id is unset.
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// MarshalText implements encoding.TextMarshaler.
func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ObjectID) UnmarshalText(text []byte) error {
	parsed, err := ParseObjectID(string(text))
	if err != nil {
		return err
	}

	*id = parsed

	return nil
}

// ComputeHash clones the asset under the given policy and hashes the canonical encoding of the clone.
// Generating new ids makes a hash useless for caching, so that flag is rejected.
func ComputeHash(src *asset.Asset, flags Flags, opts ...Option) (ObjectID, error) {
	if flags.Has(GenerateNewIdsForIdentifiableObjects) {
		return ObjectID{}, errors.New(HashPolicyError{Flags: flags, Reason: "generating new ids is not useful for caching"})
	}

	dst, err := Clone(src, flags, opts...)
	if err != nil {
		return ObjectID{}, err
	}

	data, err := Encode(dst)
	if err != nil {
		return ObjectID{}, err
	}

	return Sum(data), nil
}

// Encode returns the canonical msgpack encoding of an asset.
func Encode(src *asset.Asset) ([]byte, error) {
	tree, err := canonical(reflect.ValueOf(src))
	if err != nil {
		return nil, errors.New(err)
	}

	var buf bytes.Buffer

	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)

	if err := enc.Encode([]any{hashFormat, fmt.Sprintf("%T", src.Content), tree}); err != nil {
		return nil, errors.New(err)
	}

	return buf.Bytes(), nil
}

// Hasher memoizes content hashes per asset revision.
type Hasher struct {
	cache *cache.Cache[ObjectID]
	opts  []Option
}

// NewHasher returns a hasher that applies opts to every hash. The cache may be shared.
func NewHasher(memo *cache.Cache[ObjectID], opts ...Option) *Hasher {
	if memo == nil {
		memo = cache.NewCache[ObjectID]("hash")
	}

	return &Hasher{cache: memo, opts: opts}
}

// Hash returns the content hash of the asset, reusing the memoized value while its revision is unchanged.
// Per call opts are applied after the hasher ones and must not change between calls for the same asset.
func (hasher *Hasher) Hash(ctx context.Context, src *asset.Asset, flags Flags, opts ...Option) (ObjectID, error) {
	key := fmt.Sprintf("%s/%d/%d", src.ID, src.Revision, flags)

	return hasher.cache.GetOrCompute(ctx, key, func() (ObjectID, error) {
		return ComputeHash(src, flags, append(slices.Clone(hasher.opts), opts...)...)
	})
}

// Invalidate drops every memoized hash.
func (hasher *Hasher) Invalidate() {
	hasher.cache.Purge()
}
