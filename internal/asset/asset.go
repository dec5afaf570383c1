// Package asset contains the typed asset model that migrated documents are bound to.
package asset

import (
	"github.com/google/uuid"
	"github.com/gruntwork-io/assetflow/internal/document"
)

// ID identifies an asset across packages. It never changes across migration or cloning
// unless new identifiers are requested explicitly.
type ID = uuid.UUID

// NewID returns a random asset identifier.
func NewID() ID {
	return uuid.New()
}

// ParseID parses the textual form of an identifier.
func ParseID(str string) (ID, error) {
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, InvalidIDError{Value: str, Err: err}
	}

	return id, nil
}

// Asset is a typed, migrated asset.
type Asset struct {
	Content  any        `msgpack:"content"`
	Base     *Reference `msgpack:"base"`
	Type     string     `msgpack:"type"`
	Source   string     `msgpack:"source"`
	Meta     Metadata   `msgpack:"meta"`
	Version  int        `msgpack:"version"`
	Revision uint64     `msgpack:"-"`
	ID       ID         `msgpack:"id"`
}

// Metadata holds the side tables that are kept next to the typed content instead of inside it.
type Metadata struct {
	// Overrides maps a member path to its override marker. Base markers are not stored.
	Overrides map[string]document.Override `msgpack:"overrides"`
	// ItemIDs maps the path of a collection to the stable identifiers of its items.
	ItemIDs map[string][]ID `msgpack:"itemIds"`
}

// Override returns the marker recorded for path.
func (meta *Metadata) Override(path string) document.Override {
	return meta.Overrides[path]
}

// SetOverride records the marker for path.
func (meta *Metadata) SetOverride(path string, override document.Override) {
	if override == document.OverrideBase {
		delete(meta.Overrides, path)
		return
	}

	if meta.Overrides == nil {
		meta.Overrides = make(map[string]document.Override)
	}

	meta.Overrides[path] = override
}

// Reference returns a reference pointing at the asset stored at location.
func (asset *Asset) Reference(location string) Reference {
	return Reference{ID: asset.ID, Location: location}
}

// IsUnloadable reports whether the asset type was unknown when it was bound.
func (asset *Asset) IsUnloadable() bool {
	_, ok := asset.Content.(*UnloadableContent)
	return ok
}

// Identifiable is implemented by objects inside asset content that carry their own identifier.
type Identifiable interface {
	Identifier() ID
	SetIdentifier(id ID)
}

// Part is a polymorphic member of asset content, written as a tagged mapping in documents.
type Part interface {
	PartTag() string
}

// Unloadable is implemented by objects that could not be bound to a registered type.
type Unloadable interface {
	UnloadableReason() string
}
