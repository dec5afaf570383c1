package assettypes

import (
	"context"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/gruntwork-io/assetflow/internal/registry"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	PrefabTag     = "Prefab"
	PrefabVersion = 1

	TransformComponentTag = "TransformComponent"
	ModelComponentTag     = "ModelComponent"
	SpriteComponentTag    = "SpriteComponent"
)

// Prefab is a reusable tree of entities.
type Prefab struct {
	Entities []*Entity
}

// Entity is a named set of components. Parent is the name of the parent entity, if any.
type Entity struct {
	Parent     string
	Name       string
	Components []asset.Part
	ID         asset.ID `mapstructure:"Id"`
}

func (entity *Entity) Identifier() asset.ID      { return entity.ID }
func (entity *Entity) SetIdentifier(id asset.ID) { entity.ID = id }

// Vector3 is a position, rotation or scale.
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

// TransformComponent places an entity.
type TransformComponent struct {
	Position Vector3
	Rotation Vector3
	Scale    Vector3
}

func (*TransformComponent) PartTag() string { return TransformComponentTag }

// ModelComponent renders a model with materials.
type ModelComponent struct {
	Model     *asset.Reference
	Materials []asset.Reference
}

func (*ModelComponent) PartTag() string { return ModelComponentTag }

// SpriteComponent renders one sprite of a sheet.
type SpriteComponent struct {
	SpriteSheet *asset.Reference
	Sprite      string
}

func (*SpriteComponent) PartTag() string { return SpriteComponentTag }

func prefabType() registry.AssetType {
	return registry.AssetType{
		Tag:      PrefabTag,
		Chain:    migration.NewChain(PrefabVersion),
		Compiler: prefabCompiler{},
		New:      func() any { return &Prefab{} },
	}
}

// references returns every asset reference held by the components of the prefab.
func (prefab *Prefab) references() []*asset.Reference {
	var refs []*asset.Reference

	for _, entity := range prefab.Entities {
		for _, component := range entity.Components {
			switch c := component.(type) {
			case *ModelComponent:
				refs = append(refs, c.Model)

				for i := range c.Materials {
					refs = append(refs, &c.Materials[i])
				}
			case *SpriteComponent:
				refs = append(refs, c.SpriteSheet)
			}
		}
	}

	return refs
}

type prefabCompiler struct{}

// EnumerateDependencies returns everything the prefab references; it is only needed when the prefab is loaded.
func (prefabCompiler) EnumerateDependencies(item *asset.Item) ([]asset.Dependency, error) {
	return refDependencies(asset.Runtime, item.Asset.Content.(*Prefab).references()...), nil
}

// serializedEntity is the runtime form of an entity.
type serializedEntity struct {
	Parent     string   `msgpack:"parent,omitempty"`
	ID         string   `msgpack:"id"`
	Name       string   `msgpack:"name"`
	Components []string `msgpack:"components"`
	References []string `msgpack:"references,omitempty"`
}

func (prefabCompiler) Prepare(_ context.Context, item *asset.Item) ([]compiler.Command, error) {
	prefab := item.Asset.Content.(*Prefab)

	return []compiler.Command{
		compiler.NewCommand("serialize", compiler.OutputURL(item, ""), func(context.Context, compiler.Environment) ([]byte, error) {
			entities := make([]serializedEntity, 0, len(prefab.Entities))

			for _, entity := range prefab.Entities {
				out := serializedEntity{ID: entity.ID.String(), Name: entity.Name, Parent: entity.Parent}

				for _, component := range entity.Components {
					out.Components = append(out.Components, component.PartTag())
				}

				for _, ref := range (&Prefab{Entities: []*Entity{entity}}).references() {
					if ref != nil && !ref.IsZero() {
						out.References = append(out.References, ref.String())
					}
				}

				entities = append(entities, out)
			}

			data, err := msgpack.Marshal(entities)
			if err != nil {
				return nil, errors.New(err)
			}

			return data, nil
		}),
	}, nil
}
