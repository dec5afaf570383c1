package hashing

import (
	"strings"

	"github.com/gruntwork-io/assetflow/internal/asset"
)

// Flags selects the clone policy.
type Flags uint8

const (
	// ReferenceAsNull replaces every reference to another asset, the archetype included, with null.
	ReferenceAsNull Flags = 1 << iota
	// RemoveItemIds clears the collection item identifier side table.
	RemoveItemIds
	// RemoveUnloadableObjects replaces objects that could not be bound with tombstones.
	RemoveUnloadableObjects
	// GenerateNewIdsForIdentifiableObjects gives the asset and every identifiable object a fresh id.
	GenerateNewIdsForIdentifiableObjects
	// ClearExternalReferences replaces references to assets outside the package with null.
	ClearExternalReferences

	allFlags = ReferenceAsNull | RemoveItemIds | RemoveUnloadableObjects | GenerateNewIdsForIdentifiableObjects | ClearExternalReferences
)

var flagNames = []struct {
	name string
	flag Flags
}{
	{"reference-as-null", ReferenceAsNull},
	{"remove-item-ids", RemoveItemIds},
	{"remove-unloadable-objects", RemoveUnloadableObjects},
	{"generate-new-ids", GenerateNewIdsForIdentifiableObjects},
	{"clear-external-references", ClearExternalReferences},
}

// Has reports whether all of the given flags are set.
func (flags Flags) Has(flag Flags) bool {
	return flags&flag == flag
}

func (flags Flags) String() string {
	var names []string

	for _, entry := range flagNames {
		if flags.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, "|")
}

// ParseFlag returns the flag with the given name as printed by Flags.String.
func ParseFlag(name string) (Flags, error) {
	for _, entry := range flagNames {
		if entry.name == name {
			return entry.flag, nil
		}
	}

	return 0, UnknownFlagError{Name: name}
}

// ExternalFunc reports whether a reference points outside the package of the asset being cloned.
type ExternalFunc func(ref asset.Reference) bool

type config struct {
	isExternal ExternalFunc
	newID      func() asset.ID
}

// Option customizes cloning and hashing.
type Option func(*config)

// WithExternalResolver sets how ClearExternalReferences decides which references are external.
func WithExternalResolver(fn ExternalFunc) Option {
	return func(cfg *config) {
		cfg.isExternal = fn
	}
}

// WithIDGenerator overrides the id source used by GenerateNewIdsForIdentifiableObjects.
func WithIDGenerator(fn func() asset.ID) Option {
	return func(cfg *config) {
		cfg.newID = fn
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{newID: asset.NewID}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}
