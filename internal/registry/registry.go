// Package registry maps type tags to everything the pipeline needs to know about an asset type:
// its upgrade chain, its compiler and how to bind its documents to typed content.
// The registry is filled explicitly at process start.
package registry

import (
	"sort"
	"sync"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/migration"
)

// AssetType describes one registered asset type.
type AssetType struct {
	Chain    *migration.Chain
	Compiler compiler.Compiler
	// New returns an empty content value, usually a pointer to a struct, for binding.
	New func() any
	Tag string
}

// PartFactory returns an empty polymorphic part for binding.
type PartFactory func() asset.Part

// Registry is safe for concurrent reads once filled.
type Registry struct {
	types map[string]*AssetType
	parts map[string]PartFactory
	mu    sync.RWMutex
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		types: make(map[string]*AssetType),
		parts: make(map[string]PartFactory),
	}
}

// RegisterType adds an asset type. Tags are unique.
func (registry *Registry) RegisterType(typ AssetType) error {
	if typ.Tag == "" || typ.Chain == nil || typ.New == nil {
		return errors.New(InvalidTypeError{Tag: typ.Tag})
	}

	if err := typ.Chain.Validate(typ.Tag); err != nil {
		return err
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, ok := registry.types[typ.Tag]; ok {
		return errors.New(DuplicateTagError{Tag: typ.Tag})
	}

	registry.types[typ.Tag] = &typ

	return nil
}

// RegisterPart adds a polymorphic part type. Tags are unique.
func (registry *Registry) RegisterPart(tag string, factory PartFactory) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, ok := registry.parts[tag]; ok {
		return errors.New(DuplicateTagError{Tag: tag})
	}

	registry.parts[tag] = factory

	return nil
}

// Type returns the registered type of tag.
func (registry *Registry) Type(tag string) (*AssetType, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	typ, ok := registry.types[tag]

	return typ, ok
}

// Chain implements migration.ChainLookup.
func (registry *Registry) Chain(tag string) (*migration.Chain, bool) {
	typ, ok := registry.Type(tag)
	if !ok {
		return nil, false
	}

	return typ.Chain, true
}

// Compiler returns the compiler of tag.
func (registry *Registry) Compiler(tag string) (compiler.Compiler, bool) {
	typ, ok := registry.Type(tag)
	if !ok || typ.Compiler == nil {
		return nil, false
	}

	return typ.Compiler, true
}

// Tags returns the registered asset type tags, sorted.
func (registry *Registry) Tags() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	tags := make([]string, 0, len(registry.types))
	for tag := range registry.types {
		tags = append(tags, tag)
	}

	sort.Strings(tags)

	return tags
}

func (registry *Registry) part(tag string) (PartFactory, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	factory, ok := registry.parts[tag]

	return factory, ok
}
