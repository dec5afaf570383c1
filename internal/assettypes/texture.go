package assettypes

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/gruntwork-io/assetflow/internal/registry"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

const (
	TextureTag     = "Texture"
	TextureVersion = 2

	ColorTextureTypeTag     = "ColorTextureType"
	NormalMapTextureTypeTag = "NormalMapTextureType"
	GrayscaleTextureTypeTag = "GrayscaleTextureType"

	// ImportSuffix names the raw output of the import command of a texture.
	ImportSuffix = "import"
)

// Texture is an image imported from a source file.
type Texture struct {
	// Type is one of the *TextureType parts.
	Type               asset.Part
	Width              float64
	Height             float64
	IsSizeInPercentage bool
	GenerateMipmaps    bool
}

// ColorTextureType is a texture holding colors.
type ColorTextureType struct {
	ColorKeyColor    string
	Alpha            string
	SRGB             bool
	ColorKeyEnabled  bool
	PremultiplyAlpha bool
}

func (*ColorTextureType) PartTag() string { return ColorTextureTypeTag }

// NormalMapTextureType is a texture holding normals.
type NormalMapTextureType struct {
	InvertY bool
}

func (*NormalMapTextureType) PartTag() string { return NormalMapTextureTypeTag }

// GrayscaleTextureType is a single channel texture.
type GrayscaleTextureType struct{}

func (*GrayscaleTextureType) PartTag() string { return GrayscaleTextureTypeTag }

func textureType() registry.AssetType {
	chain := migration.NewChain(TextureVersion).
		MustRegister(0, 1, migration.UpgraderFunc(func(context.Context, log.Logger, *migration.Request) error {
			return nil
		})).
		MustRegister(1, 2, migration.UpgraderFunc(upgradeTextureHint))

	return registry.AssetType{
		Tag:      TextureTag,
		Chain:    chain,
		Compiler: textureCompiler{},
		New:      func() any { return &Texture{Width: 100, Height: 100, IsSizeInPercentage: true, GenerateMipmaps: true} },
	}
}

// colorTypeMembers move from the texture into its ColorTextureType.
var colorTypeMembers = []string{"ColorKeyEnabled", "ColorKeyColor", "Alpha", "PremultiplyAlpha"}

// upgradeTextureHint replaces the legacy Hint and ColorSpace members by a tagged Type part.
func upgradeTextureHint(_ context.Context, l log.Logger, req *migration.Request) error {
	doc := req.Document

	hint, err := stringMember(doc, "Hint")
	if err != nil {
		return err
	}

	colorSpace, err := stringMember(doc, "ColorSpace")
	if err != nil {
		return err
	}

	var textureType *document.Node

	switch hint {
	case "NormalMap":
		textureType = document.NewMapping(NormalMapTextureTypeTag)
	case "Grayscale":
		textureType = document.NewMapping(GrayscaleTextureTypeTag)
	default:
		textureType = document.NewMapping(ColorTextureTypeTag)
		// Gamma is the only legacy color space that did not mean sRGB.
		if err := textureType.Set("SRGB", document.NewBool(colorSpace != "Gamma")); err != nil {
			return err
		}

		if err := migration.MoveMembers(doc, textureType, colorTypeMembers...); err != nil {
			return err
		}
	}

	for _, key := range append([]string{"Hint", "ColorSpace"}, colorTypeMembers...) {
		if _, err := migration.RemoveMember(doc, key); err != nil {
			return err
		}
	}

	l.Debugf("Texture hint %q becomes %s", hint, textureType.Tag())

	return doc.Set("Type", textureType)
}

func stringMember(doc *document.Node, key string) (string, error) {
	node := doc.GetOr(key, nil)
	if node == nil || node.IsNull() {
		return "", nil
	}

	str, err := node.AsString()
	if err != nil {
		tag, _ := doc.TypeTag()
		return "", errors.New(InvalidMemberError{Tag: tag, Member: key, Err: err})
	}

	return str, nil
}

type textureCompiler struct{}

func (textureCompiler) EnumerateDependencies(*asset.Item) ([]asset.Dependency, error) {
	return nil, nil
}

func (textureCompiler) InputFiles(item *asset.Item) ([]string, error) {
	if item.Asset.Source == "" {
		return nil, nil
	}

	return []string{item.Asset.Source}, nil
}

// Prepare imports the source file, then transcodes it with a header describing the texture.
func (textureCompiler) Prepare(_ context.Context, item *asset.Item) ([]compiler.Command, error) {
	content := item.Asset.Content.(*Texture)
	source := item.Asset.Source

	if source == "" {
		return nil, errors.New(MissingSourceError{Location: item.Location})
	}

	importURL := compiler.OutputURL(item, ImportSuffix)

	return []compiler.Command{
		compiler.NewCommand("import", importURL, func(_ context.Context, env compiler.Environment) ([]byte, error) {
			return env.Source(source)
		}),
		compiler.NewCommand("transcode", compiler.OutputURL(item, ""), func(_ context.Context, env compiler.Environment) ([]byte, error) {
			raw, err := env.Output(importURL)
			if err != nil {
				return nil, err
			}

			var buf bytes.Buffer

			fmt.Fprintf(&buf, "texture %s srgb=%t mipmaps=%t size=%gx%g\n",
				textureKind(content.Type), isSRGB(content.Type), content.GenerateMipmaps, content.Width, content.Height)
			buf.Write(raw)

			return buf.Bytes(), nil
		}),
	}, nil
}

func textureKind(part asset.Part) string {
	if part == nil {
		return ColorTextureTypeTag
	}

	return part.PartTag()
}

func isSRGB(part asset.Part) bool {
	switch typ := part.(type) {
	case *ColorTextureType:
		return typ.SRGB
	case nil:
		return true
	default:
		return false
	}
}
