package asset

import (
	"github.com/gruntwork-io/assetflow/internal/document"
)

// Item is an asset together with where it lives.
type Item struct {
	Asset *Asset
	// Document is the migrated document the asset was bound from; it is what gets saved back.
	Document *document.Node
	// Location is the virtual path inside the package, forward slashes, no extension.
	Location string
	Package  string
	FilePath string
	// Ordinal is the declaration order of the item inside its package.
	Ordinal int
}

// ID returns the asset identifier.
func (item *Item) ID() ID {
	return item.Asset.ID
}

// Reference returns a reference to the item.
func (item *Item) Reference() Reference {
	return item.Asset.Reference(item.Location)
}

// Dependency is an edge from an asset to another one, as reported by its compiler.
type Dependency struct {
	Target Reference
	Kind   DependencyKind
}

// DependencyKind tells the resolver what a dependency means for the build.
type DependencyKind uint8

const (
	// CompileContent dependencies are compiled first and their build output feeds the dependent.
	CompileContent DependencyKind = iota
	// CompileAsset dependencies affect the build key through their content but are not compiled for it.
	CompileAsset
	// Runtime dependencies are only needed when the dependent is loaded; they are kept in the build.
	Runtime
)

func (kind DependencyKind) String() string {
	switch kind {
	case CompileContent:
		return "compile-content"
	case CompileAsset:
		return "compile-asset"
	default:
		return "runtime"
	}
}

// Orders reports whether the dependency must be built before the dependent.
func (kind DependencyKind) Orders() bool {
	return kind == CompileContent
}

// Includes reports whether the dependency is kept in the build when the dependent is.
func (kind DependencyKind) Includes() bool {
	return kind == CompileContent || kind == Runtime
}
