package session_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/gruntwork-io/assetflow/internal/registry"
	"github.com/gruntwork-io/assetflow/internal/report"
	"github.com/gruntwork-io/assetflow/internal/session"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/gruntwork-io/assetflow/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	idA = "0a1b2c3d-0000-4000-8000-00000000000a"
	idB = "0a1b2c3d-0000-4000-8000-00000000000b"
	idC = "0a1b2c3d-0000-4000-8000-00000000000c"
	idD = "0a1b2c3d-0000-4000-8000-00000000000d"
	idE = "0a1b2c3d-0000-4000-8000-00000000000e"
)

type foo struct {
	InnerRadius float64
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()

	require.NoError(t, reg.RegisterType(registry.AssetType{
		Tag: "Foo",
		Chain: migration.NewChain(2).MustRegister(1, 2, migration.UpgraderFunc(
			func(_ context.Context, _ log.Logger, req *migration.Request) error {
				return migration.RenameMember(req.Document, "Radius", "InnerRadius", req.Hint)
			})),
		New: func() any { return &foo{} },
	}))

	// Split replaces itself by a sibling file
	require.NoError(t, reg.RegisterType(registry.AssetType{
		Tag: "Split",
		Chain: migration.NewChain(1).MustRegister(0, 1, migration.UpgraderFunc(
			func(_ context.Context, _ log.Logger, req *migration.Request) error {
				sibling := filepath.Join(filepath.Dir(req.File.FilePath), "split-part.afasset")
				req.Files.Add(migration.NewMemoryFile(req.File.Package, sibling,
					[]byte("!Foo\nId: "+idE+"\nSerializedVersion: 2\nInnerRadius: 5\n")))

				return req.Files.MarkDeleted(req.File.FilePath)
			})),
		New: func() any { return &foo{} },
	}))

	return reg
}

func writeFixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	helpers.WriteFiles(t, dir, map[string]string{
		"Root/Root.afpkg": `Id: 9f000000-0000-4000-8000-000000000001
Meta:
  Name: Root
  Version: 1.0.0
  Dependencies:
    - Name: Shared
      Version: ">= 1.0, < 2.0"
      Path: ../Shared/Shared.afpkg
RootAssets:
  - ` + idA + `:foo/a
`,
		"Root/Assets/foo/a.afasset": "!Foo\nId: " + idA + "\nSerializedVersion: 1\nArchetype: " + idB + ":foo/base\nRadius*: 3\n",
		"Root/Assets/broken.afasset":  "!Foo\nId: [unclosed\n",
		"Root/Assets/mystery.afasset": "!Shader\nId: " + idC + "\nCode: main\n",
		"Root/Assets/split.afasset":   "!Split\nId: " + idD + "\n",
		"Root/Assets/zdup.afasset":    "!Foo\nId: " + idA + "\nSerializedVersion: 2\n",
		"Shared/Shared.afpkg":         "Meta:\n  Name: Shared\n  Version: 1.2.0\n",
		"Shared/Assets/foo/base.afasset": "!Foo\nId: " + idB + "\nSerializedVersion: 1\nRadius*: 1\n",
	})

	return dir
}

func load(t *testing.T, dir string) *session.Session {
	t.Helper()

	sess, err := session.Load(context.Background(), helpers.CreateLogger(nil), filepath.Join(dir, "Root", "Root.afpkg"), &session.Options{
		Registry:    newRegistry(t),
		Parallelism: 4,
	})
	require.NoError(t, err)

	return sess
}

func locations(items []*asset.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Package+"/"+item.Location)
	}

	return out
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := writeFixture(t)
	sess := load(t, dir)

	require.Len(t, sess.Packages(), 2)
	assert.Equal(t, "Root", sess.Root().Name)
	assert.Equal(t, "Shared", sess.Packages()[1].Name)
	assert.Equal(t, "1.2.0", sess.Packages()[1].Version.String())

	items := sess.Items()
	assert.Equal(t, []string{"Root/foo/a", "Root/mystery", "Root/split-part", "Shared/foo/base"}, locations(items))

	for i, item := range items {
		assert.Equal(t, i, item.Ordinal)
	}

	derived, err := sess.FindByLocation("foo/a")
	require.NoError(t, err)
	assert.Equal(t, &foo{InnerRadius: 3}, derived.Asset.Content)
	assert.Equal(t, 2, derived.Asset.Version)
	override, err := derived.Document.Override("InnerRadius")
	require.NoError(t, err)
	assert.Equal(t, document.OverrideNew, override)

	base, ok := sess.FindByID(uuid.MustParse(idB))
	require.True(t, ok)
	override, err = base.Document.Override("InnerRadius")
	require.NoError(t, err)
	assert.Equal(t, document.OverrideBase, override)

	mystery, err := sess.FindByLocation("mystery")
	require.NoError(t, err)
	assert.True(t, mystery.Asset.IsUnloadable())

	assert.Equal(t, []asset.ID{uuid.MustParse(idA)}, sess.RootIDs())
}

func TestLoadReport(t *testing.T) {
	t.Parallel()

	sess := load(t, writeFixture(t))

	broken := sess.Log.GetEntry("Root/broken", report.StageLoad)
	require.NotNil(t, broken)
	assert.Equal(t, report.ResultFailed, broken.Result)

	dup := sess.Log.GetEntry("Root/zdup", report.StageBind)
	require.NotNil(t, dup)
	assert.ErrorAs(t, dup.Err, &session.DuplicateAssetError{})

	mystery := sess.Log.GetEntry("Root/mystery", report.StageMigrate)
	require.NotNil(t, mystery)
	assert.Equal(t, report.ResultSkipped, mystery.Result)
	assert.ErrorAs(t, mystery.Err, &migration.NoUpgraderChainError{})

	split := sess.Log.GetEntry("Root/split", report.StageBind)
	require.NotNil(t, split)
	assert.Equal(t, report.ReasonDeleted, *split.Reason)

	summary := sess.Log.Summarize()
	assert.Equal(t, 3, summary.Migrated)
	assert.Equal(t, 2, summary.Failed)
}

func TestSaveAndReload(t *testing.T) {
	t.Parallel()

	dir := writeFixture(t)
	sess := load(t, dir)

	assert.Equal(t, []string{
		filepath.Join(dir, "Root", "Assets", "foo", "a.afasset"),
		filepath.Join(dir, "Root", "Assets", "split-part.afasset"),
		filepath.Join(dir, "Shared", "Assets", "foo", "base.afasset"),
	}, sess.Pending())

	require.NoError(t, sess.Save(helpers.CreateLogger(nil)))

	saved := helpers.ReadFile(t, dir, "Root/Assets/foo/a.afasset")
	assert.Contains(t, saved, "InnerRadius*: 3")
	assert.Contains(t, saved, "SerializedVersion: 2")
	assert.FileExists(t, filepath.Join(dir, "Root", "Assets", "split-part.afasset"))
	assert.NoFileExists(t, filepath.Join(dir, "Root", "Assets", "split.afasset"))

	reloaded := load(t, dir)
	assert.Empty(t, reloaded.Pending())
	assert.Equal(t, 0, reloaded.Log.Summarize().Migrated)
	assert.Equal(t, locations(sess.Items()), locations(reloaded.Items()))
}

func TestIsExternal(t *testing.T) {
	t.Parallel()

	sess := load(t, writeFixture(t))
	external := sess.IsExternal(uuid.MustParse(idA))

	assert.True(t, external(asset.Reference{ID: uuid.MustParse(idB)}))
	assert.False(t, external(asset.Reference{ID: uuid.MustParse(idC)}))
	assert.True(t, external(asset.Reference{ID: uuid.New()}))
}

func TestUpdateAsset(t *testing.T) {
	t.Parallel()

	sess := load(t, writeFixture(t))
	generation := sess.Freeze()
	assert.True(t, sess.Frozen())

	require.NoError(t, sess.UpdateAsset(uuid.MustParse(idA), func(a *asset.Asset) error {
		a.Content.(*foo).InnerRadius = 10
		return nil
	}))

	item, ok := sess.FindByID(uuid.MustParse(idA))
	require.True(t, ok)
	assert.Equal(t, uint64(1), item.Asset.Revision)
	assert.Equal(t, generation+1, sess.Generation())

	err := sess.UpdateAsset(uuid.New(), func(*asset.Asset) error { return nil })
	assert.ErrorAs(t, err, &session.AssetNotFoundError{})
}

func TestPackageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		files  map[string]string
		target any
	}{
		{
			name: "missing package path",
			files: map[string]string{
				"Root/Root.afpkg": "Meta:\n  Name: Root\n  Dependencies:\n    - Name: Gone\n      Path: ../Gone/Gone.afpkg\n",
			},
			target: &session.PackageNotFoundError{},
		},
		{
			name: "missing package name",
			files: map[string]string{
				"Root/Root.afpkg": "Meta:\n  Name: Root\n  Dependencies:\n    - Name: Gone\n",
			},
			target: &session.PackageNotFoundError{},
		},
		{
			name: "version conflict",
			files: map[string]string{
				"Root/Root.afpkg":     "Meta:\n  Name: Root\n  Dependencies:\n    - Name: Shared\n      Version: '>= 2.0'\n      Path: ../Shared/Shared.afpkg\n",
				"Shared/Shared.afpkg": "Meta:\n  Name: Shared\n  Version: 1.2.0\n",
			},
			target: &session.PackageVersionConflictError{},
		},
		{
			name: "second constraint rejects loaded version",
			files: map[string]string{
				"Root/Root.afpkg":     "Meta:\n  Name: Root\n  Dependencies:\n    - Name: Shared\n      Path: ../Shared/Shared.afpkg\n    - Name: Other\n      Path: ../Other/Other.afpkg\n",
				"Shared/Shared.afpkg": "Meta:\n  Name: Shared\n  Version: 1.2.0\n",
				"Other/Other.afpkg":   "Meta:\n  Name: Other\n  Dependencies:\n    - Name: Shared\n      Version: '~> 1.3'\n",
			},
			target: &session.PackageVersionConflictError{},
		},
		{
			name: "invalid manifest",
			files: map[string]string{
				"Root/Root.afpkg": "Meta: [\n",
			},
			target: &session.ManifestError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			helpers.WriteFiles(t, dir, tt.files)

			_, err := session.Load(context.Background(), helpers.CreateLogger(nil), filepath.Join(dir, "Root", "Root.afpkg"), &session.Options{
				Registry:    newRegistry(t),
				PackageDirs: []string{dir},
			})
			require.Error(t, err)
			assert.ErrorAs(t, err, tt.target)
		})
	}
}

func TestPackageFoundByName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	helpers.WriteFiles(t, dir, map[string]string{
		"Root/Root.afpkg":                 "Meta:\n  Name: Root\n  Dependencies:\n    - Name: Shared\n      Version: '>= 1.0'\n",
		"libs/deep/Shared/Shared.afpkg":   "Meta:\n  Name: Shared\n  Version: 1.0.0\nAssetFolders: [Data]\n",
		"libs/deep/Shared/Data/x.afasset": "!Foo\nId: " + idE + "\nSerializedVersion: 2\nInnerRadius: 1\n",
	})

	sess, err := session.Load(context.Background(), helpers.CreateLogger(nil), filepath.Join(dir, "Root", "Root.afpkg"), &session.Options{
		Registry:    newRegistry(t),
		PackageDirs: []string{filepath.Join(dir, "libs")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Shared/x"}, locations(sess.Items()))
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	dir := writeFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := session.Load(ctx, helpers.CreateLogger(nil), filepath.Join(dir, "Root", "Root.afpkg"), &session.Options{
		Registry: newRegistry(t),
	})
	assert.True(t, errors.IsCanceled(err))
}
