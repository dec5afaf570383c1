package buildcache

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/hashing"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/gruntwork-io/assetflow/telemetry"
)

const (
	// DefaultDirPerms represents standard directory permissions (rwxr-xr-x)
	DefaultDirPerms = os.FileMode(0755)
	// StoredFilePerms represents read-only file permissions (r--r--r--)
	StoredFilePerms = os.FileMode(0444)

	lockFileName  = "store.lock"
	partitionSize = 2
)

// DiskStore keeps objects in a partitioned directory, `ab/abcdef...`. Writes go to a temp file
// that is renamed into place under a file lock, so other processes sharing the directory
// never observe partial objects.
type DiskStore struct {
	logger log.Logger
	path   string
}

// NewDiskStore returns a store rooted at path. The directory is created on first write.
func NewDiskStore(l log.Logger, path string) *DiskStore {
	return &DiskStore{logger: l, path: path}
}

// Path returns the store root.
func (store *DiskStore) Path() string {
	return store.path
}

func (store *DiskStore) objectPath(id hashing.ObjectID) string {
	hash := id.String()
	return filepath.Join(store.path, hash[:partitionSize], hash)
}

// Has checks if a given id exists in the store.
func (store *DiskStore) Has(_ context.Context, id hashing.ObjectID) bool {
	_, err := os.Stat(store.objectPath(id))
	return err == nil
}

// Get reads the object stored under id.
func (store *DiskStore) Get(ctx context.Context, id hashing.ObjectID) ([]byte, error) {
	path := store.objectPath(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			telemetry.TelemeterFromContext(ctx).Count(ctx, "build_cache_miss", 1)
			return nil, errors.New(NotFoundError{ID: id})
		}

		return nil, errors.New(StoreError{Op: "read", Path: path, Err: err})
	}

	telemetry.TelemeterFromContext(ctx).Count(ctx, "build_cache_hit", 1)

	return data, nil
}

// Put writes data under id unless it is already present.
func (store *DiskStore) Put(ctx context.Context, id hashing.ObjectID, data []byte) error {
	if store.Has(ctx, id) {
		return nil
	}

	if err := os.MkdirAll(store.path, DefaultDirPerms); err != nil {
		return errors.New(StoreError{Op: "create_store_dir", Path: store.path, Err: err})
	}

	lock := flock.New(filepath.Join(store.path, lockFileName))

	if err := lock.Lock(); err != nil {
		return errors.New(StoreError{Op: "lock", Path: lock.Path(), Err: err})
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			store.logger.Warnf("Failed to release build cache lock %s: %v", lock.Path(), err)
		}
	}()

	// another process may have written it while we waited for the lock
	if store.Has(ctx, id) {
		return nil
	}

	path := store.objectPath(id)

	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPerms); err != nil {
		return errors.New(StoreError{Op: "create_partition_dir", Path: filepath.Dir(path), Err: err})
	}

	return store.writeAtomic(path, data)
}

func (store *DiskStore) writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	// a crashed writer may have left a read-only temp file behind; the lock is held
	store.removeTemp(tempPath)

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, StoredFilePerms)
	if err != nil {
		return errors.New(StoreError{Op: "create_temp_file", Path: tempPath, Err: err})
	}

	buf := bufio.NewWriter(f)

	if _, err := buf.Write(data); err != nil {
		f.Close()
		store.removeTemp(tempPath)

		return errors.New(StoreError{Op: "write_to_store", Path: tempPath, Err: err})
	}

	if err := buf.Flush(); err != nil {
		f.Close()
		store.removeTemp(tempPath)

		return errors.New(StoreError{Op: "flush_buffer", Path: tempPath, Err: err})
	}

	if err := f.Close(); err != nil {
		store.removeTemp(tempPath)

		return errors.New(StoreError{Op: "close_file", Path: tempPath, Err: err})
	}

	if err := os.Rename(tempPath, path); err != nil {
		store.removeTemp(tempPath)

		return errors.New(StoreError{Op: "finalize_store", Path: path, Err: err})
	}

	return nil
}

func (store *DiskStore) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		store.logger.Warnf("Failed to remove temp file %s: %v", path, err)
	}
}
