package registry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/gruntwork-io/assetflow/internal/registry"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type disc struct {
	Texture *asset.Reference
	Shape   asset.Part
	Name    string
	Layers  []asset.Reference
	Radius  float64
	Count   int
}

type roundShape struct {
	Smooth bool
}

func (*roundShape) PartTag() string { return "RoundShape" }

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.RegisterType(registry.AssetType{
		Tag:   "Disc",
		Chain: migration.NewChain(1),
		New:   func() any { return &disc{} },
	}))
	require.NoError(t, reg.RegisterPart("RoundShape", func() asset.Part { return &roundShape{} }))

	return reg
}

const discDocument = `!Disc
Id: 9a3c1e52-61d4-4c1b-a1f5-2f1c6f0b7d10
SerializedVersion: 1
Archetype: 0d1ff1a4-6c6a-4f43-8f39-9bbf7b8b8a01:discs/base
Source: discs/disc.png
Name*: disc
Radius: 2
Count: 3
Texture: 5b1e8d24-1a80-4a0e-9d2f-0f6f7c0b2a11:textures/stone
Layers:
  - 6c2f9e35-2b91-4b1f-8e3a-1a7f8d0c3b22:layers/a
Shape!: !RoundShape
  Smooth: true
~ItemIds:
  Layers: [7d3a0f46-3ca2-4c2f-9f4b-2b8f9e1d4c33]
`

func decode(t *testing.T, text string) *document.Node {
	t.Helper()

	doc, err := document.Decode([]byte(text))
	require.NoError(t, err)

	return doc
}

func TestBindTypedContent(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	bound, err := reg.Bind(decode(t, discDocument))
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse("9a3c1e52-61d4-4c1b-a1f5-2f1c6f0b7d10"), bound.ID)
	assert.Equal(t, "Disc", bound.Type)
	assert.Equal(t, 1, bound.Version)
	assert.Equal(t, "discs/disc.png", bound.Source)
	require.NotNil(t, bound.Base)
	assert.Equal(t, "discs/base", bound.Base.Location)

	content, ok := bound.Content.(*disc)
	require.True(t, ok)
	assert.Equal(t, "disc", content.Name)
	assert.InDelta(t, 2.0, content.Radius, 0)
	assert.Equal(t, 3, content.Count)
	require.NotNil(t, content.Texture)
	assert.Equal(t, uuid.MustParse("5b1e8d24-1a80-4a0e-9d2f-0f6f7c0b2a11"), content.Texture.ID)
	require.Len(t, content.Layers, 1)
	assert.Equal(t, "layers/a", content.Layers[0].Location)
	assert.Equal(t, &roundShape{Smooth: true}, content.Shape)

	assert.Equal(t, document.OverrideNew, bound.Meta.Override("Name"))
	assert.Equal(t, document.OverrideSealed, bound.Meta.Override("Shape"))
	assert.Equal(t, []asset.ID{uuid.MustParse("7d3a0f46-3ca2-4c2f-9f4b-2b8f9e1d4c33")}, bound.Meta.ItemIDs["Layers"])
}

func TestBindUnknownPart(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	bound, err := reg.Bind(decode(t, "!Disc\nId: 9a3c1e52-61d4-4c1b-a1f5-2f1c6f0b7d10\nShape: !SquareShape\n  Corners: 4\n"))
	require.NoError(t, err)

	part, ok := bound.Content.(*disc).Shape.(*asset.UnloadablePart)
	require.True(t, ok)
	assert.Equal(t, "SquareShape", part.Tag)
	assert.Equal(t, map[string]any{"Corners": int64(4)}, part.Raw)
}

func TestBindUnknownType(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	bound, err := reg.Bind(decode(t, "!Shader\nId: 9a3c1e52-61d4-4c1b-a1f5-2f1c6f0b7d10\nCode: main()\n"))
	require.NoError(t, err)
	assert.True(t, bound.IsUnloadable())
	assert.Equal(t, map[string]any{"Code": "main()"}, bound.Content.(*asset.UnloadableContent).Raw)
}

func TestBindErrors(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	_, err := reg.Bind(decode(t, "!Disc\nName: disc\n"))
	assert.ErrorAs(t, err, &registry.MissingMemberError{})

	_, err = reg.Bind(decode(t, "!Disc\nId: nope\n"))
	assert.ErrorAs(t, err, &asset.InvalidIDError{})

	_, err = reg.Bind(decode(t, "!Disc\nId: 9a3c1e52-61d4-4c1b-a1f5-2f1c6f0b7d10\nTexture: broken\n"))
	assert.ErrorAs(t, err, &registry.BindError{})

	_, err = reg.Bind(decode(t, "Id: 9a3c1e52-61d4-4c1b-a1f5-2f1c6f0b7d10\n"))
	assert.ErrorAs(t, err, &document.UntaggedNodeError{})
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	err := reg.RegisterType(registry.AssetType{Tag: "Disc", Chain: migration.NewChain(1), New: func() any { return &disc{} }})
	assert.ErrorAs(t, err, &registry.DuplicateTagError{})

	err = reg.RegisterPart("RoundShape", func() asset.Part { return &roundShape{} })
	assert.ErrorAs(t, err, &registry.DuplicateTagError{})

	err = reg.RegisterType(registry.AssetType{Tag: "Empty"})
	assert.ErrorAs(t, err, &registry.InvalidTypeError{})

	chain, ok := reg.Chain("Disc")
	require.True(t, ok)
	assert.Equal(t, 1, chain.Current)

	_, ok = reg.Compiler("Disc")
	assert.False(t, ok)
	assert.Equal(t, []string{"Disc"}, reg.Tags())
}

func TestRegisterRejectsBrokenChains(t *testing.T) {
	t.Parallel()

	step := migration.UpgraderFunc(func(context.Context, log.Logger, *migration.Request) error { return nil })
	chain := migration.NewChain(3).MustRegister(0, 2, step).MustRegister(1, 3, step)

	err := registry.New().RegisterType(registry.AssetType{Tag: "Ring", Chain: chain, New: func() any { return &disc{} }})
	assert.ErrorAs(t, err, &migration.VersionGapError{})
}
