// Package assettypes contains the asset types shipped with assetflow: their content, their
// upgraders and their compilers.
package assettypes

import (
	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/registry"
)

// Register adds every shipped type and part to reg.
func Register(reg *registry.Registry) error {
	parts := map[string]registry.PartFactory{
		ColorTextureTypeTag:     func() asset.Part { return &ColorTextureType{} },
		NormalMapTextureTypeTag: func() asset.Part { return &NormalMapTextureType{} },
		GrayscaleTextureTypeTag: func() asset.Part { return &GrayscaleTextureType{} },
		TransformComponentTag:   func() asset.Part { return &TransformComponent{} },
		ModelComponentTag:       func() asset.Part { return &ModelComponent{} },
		SpriteComponentTag:      func() asset.Part { return &SpriteComponent{} },
	}

	for tag, factory := range parts {
		if err := reg.RegisterPart(tag, factory); err != nil {
			return err
		}
	}

	types := []registry.AssetType{
		textureType(),
		spriteSheetType(),
		materialType(),
		prefabType(),
	}

	for _, typ := range types {
		if err := reg.RegisterType(typ); err != nil {
			return errors.New(err)
		}
	}

	return nil
}

// NewRegistry returns a registry holding every shipped type.
func NewRegistry() (*registry.Registry, error) {
	reg := registry.New()

	if err := Register(reg); err != nil {
		return nil, err
	}

	return reg, nil
}

// refDependencies turns the non zero references into dependencies of kind, once per target.
func refDependencies(kind asset.DependencyKind, refs ...*asset.Reference) []asset.Dependency {
	seen := make(map[asset.ID]bool, len(refs))
	deps := make([]asset.Dependency, 0, len(refs))

	for _, ref := range refs {
		if ref == nil || ref.IsZero() || seen[ref.ID] {
			continue
		}

		seen[ref.ID] = true
		deps = append(deps, asset.Dependency{Target: *ref, Kind: kind})
	}

	return deps
}
