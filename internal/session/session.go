// Package session loads a root package and every package it references, migrates their asset
// documents to the current format and binds them to typed assets.
package session

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/hashing"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/gruntwork-io/assetflow/internal/report"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

// Session is the transitive closure of a root package. Items are read-only once Freeze was called;
// later edits go through UpdateAsset, which bumps the generation so plans built before become stale.
type Session struct {
	byID       map[asset.ID]*asset.Item
	owners     map[asset.ID]*Package
	files      *migration.FileSet
	Log        *report.Log
	dirty      map[string]*document.Node
	packages   []*Package
	generation atomic.Uint64
	mu         sync.RWMutex
	frozen     atomic.Bool
}

func newSession(packages []*Package, files *migration.FileSet, reportLog *report.Log) *Session {
	return &Session{
		packages: packages,
		files:    files,
		Log:      reportLog,
		byID:     make(map[asset.ID]*asset.Item),
		owners:   make(map[asset.ID]*Package),
		dirty:    make(map[string]*document.Node),
	}
}

// Root returns the root package.
func (session *Session) Root() *Package {
	return session.packages[0]
}

// Packages returns the packages in load order.
func (session *Session) Packages() []*Package {
	return session.packages
}

// Package returns the package named name.
func (session *Session) Package(name string) (*Package, bool) {
	for _, pkg := range session.packages {
		if pkg.Name == name {
			return pkg, true
		}
	}

	return nil, false
}

// ReadSource reads a source file of item, path being relative to the directory of its package.
func (session *Session) ReadSource(item *asset.Item, path string) ([]byte, error) {
	pkg, ok := session.Package(item.Package)
	if !ok {
		return nil, errors.New(PackageNotFoundError{Name: item.Package})
	}

	data, err := os.ReadFile(filepath.Join(pkg.Dir, filepath.FromSlash(path)))
	if err != nil {
		return nil, errors.New(err)
	}

	return data, nil
}

// Items returns every item in package load order, then declaration order.
func (session *Session) Items() []*asset.Item {
	var items []*asset.Item

	for _, pkg := range session.packages {
		items = append(items, pkg.Items...)
	}

	return items
}

// FindByID returns the item whose asset has id.
func (session *Session) FindByID(id asset.ID) (*asset.Item, bool) {
	session.mu.RLock()
	defer session.mu.RUnlock()

	item, ok := session.byID[id]

	return item, ok
}

// FindByLocation returns the first item, in load order, stored at location.
func (session *Session) FindByLocation(location string) (*asset.Item, error) {
	for _, item := range session.Items() {
		if item.Location == location {
			return item, nil
		}
	}

	return nil, errors.New(AssetNotFoundError{Key: location})
}

// Owner returns the package holding the asset with id.
func (session *Session) Owner(id asset.ID) (*Package, bool) {
	session.mu.RLock()
	defer session.mu.RUnlock()

	pkg, ok := session.owners[id]

	return pkg, ok
}

// IsExternal returns a resolver reporting references that leave the package of owner.
// References to assets that are not in the session count as external.
func (session *Session) IsExternal(owner asset.ID) hashing.ExternalFunc {
	ownerPkg, _ := session.Owner(owner)

	return func(ref asset.Reference) bool {
		pkg, ok := session.Owner(ref.ID)
		return !ok || pkg != ownerPkg
	}
}

// RootIDs returns the union of the root sets of every package, in load order.
func (session *Session) RootIDs() []asset.ID {
	var ids []asset.ID

	for _, pkg := range session.packages {
		ids = append(ids, pkg.RootIDs()...)
	}

	return ids
}

// Freeze marks the start of resolving and returns the generation the resolver works on.
func (session *Session) Freeze() uint64 {
	session.frozen.Store(true)
	return session.generation.Load()
}

// Frozen reports whether Freeze was called.
func (session *Session) Frozen() bool {
	return session.frozen.Load()
}

// Generation is bumped by every asset update.
func (session *Session) Generation() uint64 {
	return session.generation.Load()
}

// UpdateAsset applies fn to the asset with id and bumps its revision and the session generation.
func (session *Session) UpdateAsset(id asset.ID, fn func(*asset.Asset) error) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	item, ok := session.byID[id]
	if !ok {
		return errors.New(AssetNotFoundError{Key: id.String()})
	}

	if err := fn(item.Asset); err != nil {
		return err
	}

	item.Asset.Revision++
	session.generation.Add(1)

	return nil
}

// Pending returns the paths of the documents that Save would write, sorted.
func (session *Session) Pending() []string {
	var paths []string

	for _, file := range session.files.Files() {
		if _, ok := session.dirty[file.FilePath]; ok && !file.Deleted() {
			paths = append(paths, file.FilePath)
		}
	}

	return paths
}

// Save writes migrated documents back to their files and removes the files upgraders deleted.
func (session *Session) Save(l log.Logger) error {
	errs := &errors.MultiError{}

	for _, file := range session.files.Files() {
		if file.Deleted() {
			if err := os.Remove(file.FilePath); err != nil && !os.IsNotExist(err) {
				errs = errs.Append(errors.New(err))
				continue
			}

			l.Debugf("Removed %s", file.FilePath)

			continue
		}

		doc, ok := session.dirty[file.FilePath]
		if !ok {
			continue
		}

		if err := writeDocument(file.FilePath, doc); err != nil {
			errs = errs.Append(err)
			continue
		}

		l.Debugf("Saved %s", file.FilePath)
	}

	return errs.ErrorOrNil()
}

func writeDocument(path string, doc *document.Node) error {
	data, err := document.Encode(doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.New(err)
	}

	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil { //nolint:mnd
		return errors.New(err)
	}

	return errors.New(os.Rename(tmp, path))
}
