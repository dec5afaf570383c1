package assettypes

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/gruntwork-io/assetflow/internal/registry"
)

const (
	SpriteSheetTag     = "SpriteSheet"
	SpriteSheetVersion = 1
)

// SpriteSheet groups sprites cut out of textures.
type SpriteSheet struct {
	Type    string
	Sprites []*Sprite
}

// Sprite is one region of a texture.
type Sprite struct {
	Texture *asset.Reference
	Name    string
	Region  Rectangle
	ID      asset.ID `mapstructure:"Id"`
}

func (sprite *Sprite) Identifier() asset.ID      { return sprite.ID }
func (sprite *Sprite) SetIdentifier(id asset.ID) { sprite.ID = id }

// Rectangle is a region in pixels.
type Rectangle struct {
	X      int
	Y      int
	Width  int
	Height int
}

func spriteSheetType() registry.AssetType {
	return registry.AssetType{
		Tag:      SpriteSheetTag,
		Chain:    migration.NewChain(SpriteSheetVersion),
		Compiler: spriteSheetCompiler{},
		New:      func() any { return &SpriteSheet{Type: "Sprite2D"} },
	}
}

type spriteSheetCompiler struct{}

// EnumerateDependencies returns the textures of the sprites; they are compiled first.
func (spriteSheetCompiler) EnumerateDependencies(item *asset.Item) ([]asset.Dependency, error) {
	sheet := item.Asset.Content.(*SpriteSheet)

	refs := make([]*asset.Reference, 0, len(sheet.Sprites))
	for _, sprite := range sheet.Sprites {
		refs = append(refs, sprite.Texture)
	}

	return refDependencies(asset.CompileContent, refs...), nil
}

// Prepare packs the sprite regions next to the size of the texture they come from.
func (spriteSheetCompiler) Prepare(_ context.Context, item *asset.Item) ([]compiler.Command, error) {
	sheet := item.Asset.Content.(*SpriteSheet)

	return []compiler.Command{
		compiler.NewCommand("pack", compiler.OutputURL(item, ""), func(_ context.Context, env compiler.Environment) ([]byte, error) {
			var buf bytes.Buffer

			fmt.Fprintf(&buf, "spritesheet %s %d\n", sheet.Type, len(sheet.Sprites))

			for _, sprite := range sheet.Sprites {
				size := 0

				if sprite.Texture != nil && !sprite.Texture.IsZero() {
					data, err := env.OutputOf(sprite.Texture.ID, "")
					if err != nil {
						return nil, err
					}

					size = len(data)
				}

				region := sprite.Region
				fmt.Fprintf(&buf, "%s %s %d,%d,%d,%d %d\n", sprite.ID, sprite.Name, region.X, region.Y, region.Width, region.Height, size)
			}

			return buf.Bytes(), nil
		}),
	}, nil
}
