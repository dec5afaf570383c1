package hashing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/hashing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sprite struct {
	Texture *asset.Reference
	Name    string
	ID      asset.ID
}

func (s *sprite) Identifier() asset.ID      { return s.ID }
func (s *sprite) SetIdentifier(id asset.ID) { s.ID = id }

type colorPart struct {
	SRGB bool
}

func (*colorPart) PartTag() string { return "ColorTextureType" }

type grayPart struct {
	SRGB bool
}

func (*grayPart) PartTag() string { return "GrayscaleTextureType" }

type sheet struct {
	Parts   []asset.Part
	Sprites []sprite
	Tint    asset.Reference
}

var (
	textureA = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	textureB = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	sheetID  = uuid.MustParse("33333333-3333-4333-8333-333333333333")
)

func newSheet(texture asset.ID) *asset.Asset {
	return &asset.Asset{
		ID:      sheetID,
		Type:    "SpriteSheet",
		Version: 1,
		Base:    &asset.Reference{ID: texture, Location: "sheets/base"},
		Meta: asset.Metadata{
			Overrides: map[string]document.Override{"Sprites[0].Name": document.OverrideNew, "Tint": document.OverrideSealed},
			ItemIDs:   map[string][]asset.ID{"Sprites": {textureA}},
		},
		Content: &sheet{
			Sprites: []sprite{
				{ID: uuid.MustParse("44444444-4444-4444-8444-444444444444"), Name: "idle", Texture: &asset.Reference{ID: texture, Location: "textures/hero"}},
				{ID: uuid.MustParse("55555555-5555-4555-8555-555555555555"), Name: "run"},
			},
			Parts: []asset.Part{&colorPart{SRGB: true}},
			Tint:  asset.Reference{ID: texture, Location: "textures/hero"},
		},
	}
}

func TestHashIsInvariantUnderClone(t *testing.T) {
	t.Parallel()

	src := newSheet(textureA)

	hash, err := hashing.ComputeHash(src, 0)
	require.NoError(t, err)

	clone, err := hashing.Clone(src, 0)
	require.NoError(t, err)

	cloneHash, err := hashing.ComputeHash(clone, 0)
	require.NoError(t, err)
	assert.Equal(t, hash, cloneHash)

	clone.Content.(*sheet).Sprites[0].Name = "changed"
	assert.Equal(t, "idle", src.Content.(*sheet).Sprites[0].Name)

	changedHash, err := hashing.ComputeHash(clone, 0)
	require.NoError(t, err)
	assert.NotEqual(t, hash, changedHash)
}

func TestHashIgnoresRevision(t *testing.T) {
	t.Parallel()

	src := newSheet(textureA)
	first, err := hashing.ComputeHash(src, 0)
	require.NoError(t, err)

	src.Revision = 42
	second, err := hashing.ComputeHash(src, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReferenceAsNullIgnoresReferenceIDs(t *testing.T) {
	t.Parallel()

	withA, err := hashing.ComputeHash(newSheet(textureA), hashing.ReferenceAsNull)
	require.NoError(t, err)

	withB, err := hashing.ComputeHash(newSheet(textureB), hashing.ReferenceAsNull)
	require.NoError(t, err)
	assert.Equal(t, withA, withB)

	plainA, err := hashing.ComputeHash(newSheet(textureA), 0)
	require.NoError(t, err)

	plainB, err := hashing.ComputeHash(newSheet(textureB), 0)
	require.NoError(t, err)
	assert.NotEqual(t, plainA, plainB)

	clone, err := hashing.Clone(newSheet(textureA), hashing.ReferenceAsNull)
	require.NoError(t, err)
	assert.Nil(t, clone.Base)
	assert.Nil(t, clone.Content.(*sheet).Sprites[0].Texture)
	assert.True(t, clone.Content.(*sheet).Tint.IsZero())
}

func TestPartsOfDifferentTypesHashDifferently(t *testing.T) {
	t.Parallel()

	color := newSheet(textureA)
	gray := newSheet(textureA)
	gray.Content.(*sheet).Parts = []asset.Part{&grayPart{SRGB: true}}

	colorHash, err := hashing.ComputeHash(color, 0)
	require.NoError(t, err)

	grayHash, err := hashing.ComputeHash(gray, 0)
	require.NoError(t, err)
	assert.NotEqual(t, colorHash, grayHash)
}

func TestMapOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	first := newSheet(textureA)
	second := newSheet(textureA)

	second.Meta.Overrides = map[string]document.Override{}
	second.Meta.Overrides["Tint"] = document.OverrideSealed
	second.Meta.Overrides["Sprites[0].Name"] = document.OverrideNew

	for range 10 {
		a, err := hashing.ComputeHash(first, 0)
		require.NoError(t, err)

		b, err := hashing.ComputeHash(second, 0)
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestGenerateNewIds(t *testing.T) {
	t.Parallel()

	src := newSheet(textureA)

	_, err := hashing.ComputeHash(src, hashing.GenerateNewIdsForIdentifiableObjects)
	assert.ErrorAs(t, err, &hashing.HashPolicyError{})

	clone, err := hashing.Clone(src, hashing.GenerateNewIdsForIdentifiableObjects)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, clone.ID)

	srcSprites := src.Content.(*sheet).Sprites
	cloneSprites := clone.Content.(*sheet).Sprites

	assert.NotEqual(t, srcSprites[0].ID, cloneSprites[0].ID)
	assert.NotEqual(t, srcSprites[1].ID, cloneSprites[1].ID)
	assert.NotEqual(t, cloneSprites[0].ID, cloneSprites[1].ID)
	assert.Equal(t, uuid.MustParse("44444444-4444-4444-8444-444444444444"), srcSprites[0].ID)
}

func TestClearExternalReferences(t *testing.T) {
	t.Parallel()

	_, err := hashing.Clone(newSheet(textureA), hashing.ClearExternalReferences)
	assert.ErrorAs(t, err, &hashing.HashPolicyError{})

	external := func(ref asset.Reference) bool { return ref.ID == textureB }

	clone, err := hashing.Clone(newSheet(textureA), hashing.ClearExternalReferences, hashing.WithExternalResolver(external))
	require.NoError(t, err)
	assert.NotNil(t, clone.Content.(*sheet).Sprites[0].Texture)

	clone, err = hashing.Clone(newSheet(textureB), hashing.ClearExternalReferences, hashing.WithExternalResolver(external))
	require.NoError(t, err)
	assert.Nil(t, clone.Base)
	assert.Nil(t, clone.Content.(*sheet).Sprites[0].Texture)
	assert.True(t, clone.Content.(*sheet).Tint.IsZero())
}

func TestUnloadableObjects(t *testing.T) {
	t.Parallel()

	src := newSheet(textureA)
	src.Content.(*sheet).Parts = append(src.Content.(*sheet).Parts, &asset.UnloadablePart{Tag: "LegacyPart", Reason: "unknown part"})

	_, err := hashing.Clone(src, 0)

	var unloadable hashing.UnloadableObjectError
	require.ErrorAs(t, err, &unloadable)
	assert.Equal(t, "LegacyPart", unloadable.Tag)

	clone, err := hashing.Clone(src, hashing.RemoveUnloadableObjects)
	require.NoError(t, err)
	assert.Equal(t, &asset.Tombstone{Tag: "LegacyPart"}, clone.Content.(*sheet).Parts[1])

	whole := &asset.Asset{ID: sheetID, Type: "Shader", Content: &asset.UnloadableContent{Tag: "Shader", Reason: "unknown type"}}

	_, err = hashing.ComputeHash(whole, 0)
	require.ErrorAs(t, err, &unloadable)

	_, err = hashing.ComputeHash(whole, hashing.RemoveUnloadableObjects)
	require.NoError(t, err)
}

func TestRemoveItemIds(t *testing.T) {
	t.Parallel()

	src := newSheet(textureA)

	clone, err := hashing.Clone(src, hashing.RemoveItemIds)
	require.NoError(t, err)
	assert.Nil(t, clone.Meta.ItemIDs)
	assert.NotNil(t, src.Meta.ItemIDs)
}

func TestUnknownFlagBits(t *testing.T) {
	t.Parallel()

	_, err := hashing.ComputeHash(newSheet(textureA), hashing.Flags(1<<7))
	assert.ErrorAs(t, err, &hashing.HashPolicyError{})
}

func TestHasherMemoizesPerRevision(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hasher := hashing.NewHasher(nil)
	src := newSheet(textureA)

	first, err := hasher.Hash(ctx, src, hashing.ReferenceAsNull)
	require.NoError(t, err)

	src.Content.(*sheet).Sprites[0].Name = "changed"

	cached, err := hasher.Hash(ctx, src, hashing.ReferenceAsNull)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	src.Revision++

	fresh, err := hasher.Hash(ctx, src, hashing.ReferenceAsNull)
	require.NoError(t, err)
	assert.NotEqual(t, first, fresh)
}

func TestObjectIDText(t *testing.T) {
	t.Parallel()

	id := hashing.Sum([]byte("payload"))

	parsed, err := hashing.ParseObjectID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.False(t, parsed.IsZero())

	_, err = hashing.ParseObjectID("abcd")
	require.Error(t, err)
}

func TestFlagNames(t *testing.T) {
	t.Parallel()

	flag, err := hashing.ParseFlag("reference-as-null")
	require.NoError(t, err)
	assert.Equal(t, hashing.ReferenceAsNull, flag)
	assert.Equal(t, "reference-as-null|clear-external-references", (hashing.ReferenceAsNull | hashing.ClearExternalReferences).String())

	_, err = hashing.ParseFlag("bogus")
	assert.ErrorAs(t, err, &hashing.UnknownFlagError{})
}
