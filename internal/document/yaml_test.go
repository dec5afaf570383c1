package document_test

import (
	"testing"

	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textureDocument = `!Texture
Id: 5b1e8d24-1a80-4a0e-9d2f-0f6f7c0b2a11
SerializedVersion: 1
Source: textures/stone.png
Hint: NormalMap
Width*: 512
Scale!: 1.5
Premultiply*!: true
Note: null
Tags: [rock, "42"]
`

func TestDecodeDocument(t *testing.T) {
	t.Parallel()

	node, err := document.Decode([]byte(textureDocument))
	require.NoError(t, err)

	tag, err := node.TypeTag()
	require.NoError(t, err)
	assert.Equal(t, "Texture", tag)
	assert.Equal(t, []string{"Id", "SerializedVersion", "Source", "Hint", "Width", "Scale", "Premultiply", "Note", "Tags"}, node.Keys())

	version, err := node.GetOr("SerializedVersion", nil).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	override, err := node.Override("Width")
	require.NoError(t, err)
	assert.Equal(t, document.OverrideNew, override)

	override, err = node.Override("Scale")
	require.NoError(t, err)
	assert.Equal(t, document.OverrideSealed, override)

	override, err = node.Override("Premultiply")
	require.NoError(t, err)
	assert.True(t, override.IsNew())
	assert.True(t, override.IsSealed())

	assert.True(t, node.GetOr("Note", nil).IsNull())

	tags, err := node.Get("Tags")
	require.NoError(t, err)

	second, err := tags.Item(1)
	require.NoError(t, err)

	str, err := second.AsString()
	require.NoError(t, err)
	assert.Equal(t, "42", str)
}

func TestRoundTripIsStable(t *testing.T) {
	t.Parallel()

	node, err := document.Decode([]byte(textureDocument))
	require.NoError(t, err)

	first, err := document.Encode(node)
	require.NoError(t, err)

	again, err := document.Decode(first)
	require.NoError(t, err)
	assert.True(t, node.Equal(again))

	second, err := document.Encode(again)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), "Width*: 512")
	assert.Contains(t, string(first), "Premultiply*!: true")
	assert.Contains(t, string(first), `"42"`)
}

func TestEncodeFloatStaysFloat(t *testing.T) {
	t.Parallel()

	node := document.NewMapping("")
	require.NoError(t, node.Set("Whole", document.NewFloat(2)))

	out, err := document.Encode(node)
	require.NoError(t, err)
	assert.Equal(t, "Whole: 2.0\n", string(out))

	decoded, err := document.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, document.FloatScalar, decoded.GetOr("Whole", nil).ScalarType())
}

func TestDecodeRejectsDuplicateKeys(t *testing.T) {
	t.Parallel()

	_, err := document.Decode([]byte("A: 1\nA*: 2\n"))
	require.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	t.Parallel()

	node, err := document.Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, document.MappingKind, node.Kind())
	assert.Equal(t, 0, node.Len())
}

func TestDecodeTaggedChildren(t *testing.T) {
	t.Parallel()

	node, err := document.Decode([]byte("!Prefab\nEntities:\n  - Components:\n      - !TransformComponent\n        Position: [0, 1, 2]\n"))
	require.NoError(t, err)

	entities, err := node.Get("Entities")
	require.NoError(t, err)

	entity, err := entities.Item(0)
	require.NoError(t, err)

	components, err := entity.Get("Components")
	require.NoError(t, err)

	component, err := components.Item(0)
	require.NoError(t, err)
	assert.Equal(t, "TransformComponent", component.Tag())
}

func TestBareTagIsEmptyMapping(t *testing.T) {
	t.Parallel()

	node, err := document.Decode([]byte("!Texture\n"))
	require.NoError(t, err)
	assert.Equal(t, document.MappingKind, node.Kind())
	assert.Equal(t, "Texture", node.Tag())

	out, err := document.Encode(node)
	require.NoError(t, err)

	again, err := document.Decode(out)
	require.NoError(t, err)
	assert.True(t, node.Equal(again))
}
