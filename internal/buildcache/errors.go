package buildcache

import (
	"fmt"

	"github.com/gruntwork-io/assetflow/internal/hashing"
)

// NotFoundError is returned when an object is not in the store.
type NotFoundError struct {
	ID hashing.ObjectID
}

func (err NotFoundError) Error() string {
	return fmt.Sprintf("object %s not found in build cache", err.ID)
}

// StoreError provides the operation and path of a failed disk store access.
type StoreError struct {
	Err  error
	Op   string
	Path string
}

func (err StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", err.Op, err.Path, err.Err)
}

func (err StoreError) Unwrap() error {
	return err.Err
}

// CorruptManifestError is returned when a stored manifest cannot be decoded.
type CorruptManifestError struct {
	Err error
	Key hashing.ObjectID
}

func (err CorruptManifestError) Error() string {
	return fmt.Sprintf("manifest %s is corrupt: %v", err.Key, err.Err)
}

func (err CorruptManifestError) Unwrap() error {
	return err.Err
}
