package document_test

import (
	"testing"

	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMapping(t *testing.T) *document.Node {
	t.Helper()

	node := document.NewMapping("Foo")
	require.NoError(t, node.Set("Name", document.NewString("disc")))
	require.NoError(t, node.SetEntry("Radius", document.NewFloat(2.5), document.OverrideNew))
	require.NoError(t, node.Set("Tags", document.NewSequence(document.NewString("a"), document.NewString("b"))))

	return node
}

func TestGetAndGetOr(t *testing.T) {
	t.Parallel()

	node := sampleMapping(t)

	val, err := node.Get("Name")
	require.NoError(t, err)

	name, err := val.AsString()
	require.NoError(t, err)
	assert.Equal(t, "disc", name)

	_, err = node.Get("Missing")

	var notFound document.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Missing", notFound.Key)

	def := document.NewInt(7)
	assert.Same(t, def, node.GetOr("Missing", def))
}

func TestSetKeepsPositionAndMarker(t *testing.T) {
	t.Parallel()

	node := sampleMapping(t)

	require.NoError(t, node.Set("Radius", document.NewFloat(3)))
	assert.Equal(t, []string{"Name", "Radius", "Tags"}, node.Keys())

	override, err := node.Override("Radius")
	require.NoError(t, err)
	assert.Equal(t, document.OverrideNew, override)

	require.NoError(t, node.Set("Color", document.NewString("red")))
	assert.Equal(t, []string{"Name", "Radius", "Tags", "Color"}, node.Keys())
}

func TestRename(t *testing.T) {
	t.Parallel()

	node := sampleMapping(t)

	require.NoError(t, node.Rename("Radius", "InnerRadius"))
	assert.Equal(t, []string{"Name", "InnerRadius", "Tags"}, node.Keys())

	override, err := node.Override("InnerRadius")
	require.NoError(t, err)
	assert.True(t, override.IsNew())

	err = node.Rename("Radius", "Other")
	assert.ErrorAs(t, err, &document.NotFoundError{})

	err = node.Rename("Name", "Tags")
	assert.ErrorAs(t, err, &document.KeyExistsError{})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	node := sampleMapping(t)

	removed, err := node.Remove("Name")
	require.NoError(t, err)

	name, err := removed.AsString()
	require.NoError(t, err)
	assert.Equal(t, "disc", name)
	assert.False(t, node.Has("Name"))

	_, err = node.Remove("Name")
	assert.ErrorAs(t, err, &document.NotFoundError{})
}

func TestSequenceOperations(t *testing.T) {
	t.Parallel()

	seq := document.NewSequence(document.NewInt(1), document.NewInt(3))

	require.NoError(t, seq.Insert(1, document.NewInt(2)))
	require.NoError(t, seq.Insert(3, document.NewInt(4)))
	assert.Equal(t, []any{int64(1), int64(2), int64(3), int64(4)}, seq.Interface())

	err := seq.Insert(9, document.NewInt(5))
	assert.ErrorAs(t, err, &document.NotFoundError{})

	removed, err := seq.RemoveAt(0)
	require.NoError(t, err)

	first, err := removed.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	_, err = seq.RemoveAt(3)
	assert.ErrorAs(t, err, &document.NotFoundError{})

	_, err = seq.Item(-1)
	assert.ErrorAs(t, err, &document.NotFoundError{})
}

func TestShapeMismatch(t *testing.T) {
	t.Parallel()

	scalar := document.NewString("text")

	_, err := scalar.Get("key")
	assert.ErrorAs(t, err, &document.ShapeMismatchError{})

	_, err = scalar.AsInt()
	assert.ErrorAs(t, err, &document.ShapeMismatchError{})

	err = document.NewMapping("").Append(scalar)
	assert.ErrorAs(t, err, &document.ShapeMismatchError{})

	val, err := document.NewInt(4).AsFloat()
	require.NoError(t, err)
	assert.InDelta(t, 4.0, val, 0)
}

func TestTypeTag(t *testing.T) {
	t.Parallel()

	tag, err := sampleMapping(t).TypeTag()
	require.NoError(t, err)
	assert.Equal(t, "Foo", tag)

	_, err = document.NewMapping("").TypeTag()
	assert.True(t, errors.As(err, &document.UntaggedNodeError{}))
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	node := sampleMapping(t)
	clone := node.Clone()

	require.True(t, node.Equal(clone))

	tags, err := clone.Get("Tags")
	require.NoError(t, err)
	require.NoError(t, tags.Append(document.NewString("c")))
	require.NoError(t, clone.SetOverride("Radius", document.OverrideSealed))

	assert.False(t, node.Equal(clone))

	original, err := node.Get("Tags")
	require.NoError(t, err)
	assert.Equal(t, 2, original.Len())
}

func TestInterfaceExposesTag(t *testing.T) {
	t.Parallel()

	out, ok := sampleMapping(t).Interface().(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "Foo", out[document.TypeKey])
	assert.InDelta(t, 2.5, out["Radius"], 0)
	assert.Equal(t, []any{"a", "b"}, out["Tags"])
}

func TestWalkPaths(t *testing.T) {
	t.Parallel()

	node := sampleMapping(t)

	inner := document.NewMapping("")
	require.NoError(t, inner.SetEntry("Texture", document.NewString("ref"), document.OverrideSealed))
	require.NoError(t, node.Set("Sprites", document.NewSequence(inner)))

	overrides := map[string]document.Override{}
	require.NoError(t, node.Walk(func(path string, entry document.Entry) error {
		if entry.Override != document.OverrideBase {
			overrides[path] = entry.Override
		}

		return nil
	}))

	assert.Equal(t, map[string]document.Override{
		"Radius":             document.OverrideNew,
		"Sprites[0].Texture": document.OverrideSealed,
	}, overrides)
}
