package migration_test

import (
	"context"
	"testing"

	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chains map[string]*migration.Chain

func (c chains) Chain(tag string) (*migration.Chain, bool) {
	chain, ok := c[tag]
	return chain, ok
}

func renameRadius(_ context.Context, _ log.Logger, req *migration.Request) error {
	return migration.RenameMember(req.Document, "Radius", "InnerRadius", req.Hint)
}

func noop(context.Context, log.Logger, *migration.Request) error {
	return nil
}

func fooChain() *migration.Chain {
	return migration.NewChain(2).
		MustRegister(0, 1, migration.UpgraderFunc(noop)).
		MustRegister(1, 2, migration.UpgraderFunc(renameRadius))
}

func decode(t *testing.T, text string) *document.Node {
	t.Helper()

	doc, err := document.Decode([]byte(text))
	require.NoError(t, err)

	return doc
}

func testLogger() log.Logger {
	return log.New(log.WithLevel(log.ErrorLevel))
}

func TestMigrateRenamesMemberAndKeepsMarker(t *testing.T) {
	t.Parallel()

	engine := migration.NewEngine(chains{"Foo": fooChain()})
	doc := decode(t, "!Foo\nSerializedVersion: 1\nRadius*: 2.5\nName: disc\n")

	result, err := engine.Migrate(context.Background(), testLogger(), doc, nil, migration.NewFileSet(), migration.HintDerived)
	require.NoError(t, err)

	assert.True(t, result.Migrated())
	assert.Equal(t, 1, result.From)
	assert.Equal(t, 2, result.To)
	assert.Equal(t, []string{"SerializedVersion", "InnerRadius", "Name"}, result.Document.Keys())

	override, err := result.Document.Override("InnerRadius")
	require.NoError(t, err)
	assert.Equal(t, document.OverrideNew, override)

	version, err := migration.StoredVersion(result.Document)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	assert.True(t, doc.Has("Radius"), "input document must stay untouched")
}

func TestMigrateBaseDropsNewMarker(t *testing.T) {
	t.Parallel()

	engine := migration.NewEngine(chains{"Foo": fooChain()})
	doc := decode(t, "!Foo\nSerializedVersion: 1\nRadius*!: 2.5\n")

	result, err := engine.Migrate(context.Background(), testLogger(), doc, nil, migration.NewFileSet(), migration.HintBase)
	require.NoError(t, err)

	override, err := result.Document.Override("InnerRadius")
	require.NoError(t, err)
	assert.Equal(t, document.OverrideSealed, override)
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	engine := migration.NewEngine(chains{"Foo": fooChain()})
	doc := decode(t, "!Foo\nRadius: 1\n")

	first, err := engine.Migrate(context.Background(), testLogger(), doc, nil, migration.NewFileSet(), migration.HintUnknown)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Steps)
	assert.Equal(t, 0, first.From)

	second, err := engine.Migrate(context.Background(), testLogger(), first.Document, nil, migration.NewFileSet(), migration.HintUnknown)
	require.NoError(t, err)
	assert.False(t, second.Migrated())
	assert.Same(t, first.Document, second.Document)
	assert.True(t, first.Document.Equal(second.Document))
}

func TestMigrateErrors(t *testing.T) {
	t.Parallel()

	gapChain := migration.NewChain(3).MustRegister(0, 1, migration.UpgraderFunc(noop))
	overshootChain := migration.NewChain(3).MustRegister(0, 2, migration.UpgraderFunc(noop))
	lateChain := migration.NewChain(3).MustRegister(2, 3, migration.UpgraderFunc(noop))
	oldChain := migration.NewChain(3).WithMinVersion(2).MustRegister(2, 3, migration.UpgraderFunc(noop))
	overlapChain := migration.NewChain(3).
		MustRegister(0, 2, migration.UpgraderFunc(noop)).
		MustRegister(1, 3, migration.UpgraderFunc(noop))

	engine := migration.NewEngine(chains{
		"Foo":       fooChain(),
		"Gap":       gapChain,
		"Overshoot": overshootChain,
		"Late":      lateChain,
		"Old":       oldChain,
		"Overlap":   overlapChain,
	})

	testCases := []struct {
		check func(t *testing.T, err error)
		name  string
		text  string
	}{
		{
			name:  "no chain",
			text:  "!Bar\nSerializedVersion: 1\n",
			check: func(t *testing.T, err error) { assert.ErrorAs(t, err, &migration.NoUpgraderChainError{}) },
		},
		{
			name:  "untagged",
			text:  "SerializedVersion: 1\n",
			check: func(t *testing.T, err error) { assert.ErrorAs(t, err, &document.UntaggedNodeError{}) },
		},
		{
			name:  "too new",
			text:  "!Foo\nSerializedVersion: 5\n",
			check: func(t *testing.T, err error) { assert.ErrorAs(t, err, &migration.VersionTooNewError{}) },
		},
		{
			name:  "too old",
			text:  "!Old\nSerializedVersion: 1\n",
			check: func(t *testing.T, err error) { assert.ErrorAs(t, err, &migration.VersionTooOldError{}) },
		},
		{
			name:  "gap",
			text:  "!Gap\n",
			check: func(t *testing.T, err error) { assert.ErrorAs(t, err, &migration.VersionGapError{}) },
		},
		{
			name:  "chain does not start low enough",
			text:  "!Late\nSerializedVersion: 1\n",
			check: func(t *testing.T, err error) { assert.ErrorAs(t, err, &migration.VersionGapError{}) },
		},
		{
			name:  "chain stops short",
			text:  "!Overshoot\n",
			check: func(t *testing.T, err error) { assert.ErrorAs(t, err, &migration.VersionGapError{}) },
		},
		{
			name:  "next step starts below the reached version",
			text:  "!Overlap\nSerializedVersion: 0\n",
			check: func(t *testing.T, err error) { assert.ErrorAs(t, err, &migration.VersionGapError{}) },
		},
		{
			name:  "invalid version",
			text:  "!Foo\nSerializedVersion: [1]\n",
			check: func(t *testing.T, err error) { assert.ErrorAs(t, err, &migration.InvalidVersionError{}) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := engine.Migrate(context.Background(), testLogger(), decode(t, tc.text), nil, migration.NewFileSet(), migration.HintUnknown)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestFailedStepLeavesDocumentUntouched(t *testing.T) {
	t.Parallel()

	failing := migration.UpgraderFunc(func(_ context.Context, _ log.Logger, req *migration.Request) error {
		if _, err := req.Document.Remove("Name"); err != nil {
			return err
		}

		return errors.New("cannot convert")
	})

	chain := migration.NewChain(2).
		MustRegister(0, 1, migration.UpgraderFunc(noop)).
		MustRegister(1, 2, failing)

	engine := migration.NewEngine(chains{"Foo": chain})
	doc := decode(t, "!Foo\nName: disc\n")
	before := doc.Clone()

	_, err := engine.Migrate(context.Background(), testLogger(), doc, nil, migration.NewFileSet(), migration.HintUnknown)

	var stepErr migration.StepFailedError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.From)
	assert.True(t, before.Equal(doc))
}

func TestStepsSeeVersionsAndFiles(t *testing.T) {
	t.Parallel()

	var seen [][2]int

	record := migration.UpgraderFunc(func(_ context.Context, _ log.Logger, req *migration.Request) error {
		seen = append(seen, [2]int{req.Current, req.Target})

		if req.Target == 3 {
			req.Files.Add(migration.NewMemoryFile(req.File.Package, "assets/extra.afasset", []byte("!Foo\n")))
			req.File.MarkDeleted()
		}

		return nil
	})

	chain := migration.NewChain(3).
		MustRegister(0, 2, record).
		MustRegister(2, 3, record)

	file := migration.NewMemoryFile("core", "assets/main.afasset", []byte("!Foo\n"))
	files := migration.NewFileSet(file)

	engine := migration.NewEngine(chains{"Foo": chain})

	_, err := engine.Migrate(context.Background(), testLogger(), decode(t, "!Foo\nSerializedVersion: 1\n"), file, files, migration.HintUnknown)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 2}, {2, 3}}, seen)
	assert.True(t, file.Deleted())

	extra, ok := files.Find("assets/extra.afasset")
	require.True(t, ok)
	assert.Equal(t, "core", extra.Package)
	assert.Equal(t, 2, files.Len())
}

func TestMigrateStopsWhenCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := migration.NewEngine(chains{"Foo": fooChain()})

	_, err := engine.Migrate(ctx, testLogger(), decode(t, "!Foo\n"), nil, migration.NewFileSet(), migration.HintUnknown)
	assert.True(t, errors.IsCanceled(err))
}

func TestRegisterRejectsInvalidSteps(t *testing.T) {
	t.Parallel()

	chain := migration.NewChain(3)

	require.NoError(t, chain.Register(0, 1, migration.UpgraderFunc(noop)))
	assert.ErrorAs(t, chain.Register(1, 1, migration.UpgraderFunc(noop)), &migration.InvalidUpgraderError{})
	assert.ErrorAs(t, chain.Register(0, 2, migration.UpgraderFunc(noop)), &migration.InvalidUpgraderError{})
	assert.ErrorAs(t, chain.Register(2, 4, migration.UpgraderFunc(noop)), &migration.InvalidUpgraderError{})
	assert.Len(t, chain.Steps(), 1)
}

func TestValidateChains(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		chain *migration.Chain
		name  string
		valid bool
	}{
		{name: "empty", chain: migration.NewChain(2), valid: true},
		{name: "contiguous", chain: fooChain(), valid: true},
		{
			name:  "starts above zero",
			chain: migration.NewChain(3).MustRegister(1, 2, migration.UpgraderFunc(noop)).MustRegister(2, 3, migration.UpgraderFunc(noop)),
			valid: true,
		},
		{
			name:  "overlapping steps",
			chain: migration.NewChain(3).MustRegister(0, 2, migration.UpgraderFunc(noop)).MustRegister(1, 3, migration.UpgraderFunc(noop)),
		},
		{
			name:  "hole between steps",
			chain: migration.NewChain(4).MustRegister(0, 1, migration.UpgraderFunc(noop)).MustRegister(2, 4, migration.UpgraderFunc(noop)),
		},
		{
			name:  "stops short of current",
			chain: migration.NewChain(3).MustRegister(0, 2, migration.UpgraderFunc(noop)),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.chain.Validate("Foo")
			if tc.valid {
				assert.NoError(t, err)
				return
			}

			assert.ErrorAs(t, err, &migration.VersionGapError{})
		})
	}
}
