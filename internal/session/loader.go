package session

import (
	"context"
	"runtime"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/gruntwork-io/assetflow/internal/registry"
	"github.com/gruntwork-io/assetflow/internal/report"
	"github.com/gruntwork-io/assetflow/internal/worker"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/gruntwork-io/assetflow/telemetry"
	"github.com/puzpuzpuz/xsync/v3"
)

// Options configures a load.
type Options struct {
	Registry *registry.Registry
	// PackageDirs are searched for packages referenced by name only.
	PackageDirs []string
	Parallelism int
}

// loadedFile tracks one document through parse, migrate and bind.
type loadedFile struct {
	file     *migration.AssetFile
	pkg      *Package
	doc      *document.Node
	result   *migration.Result
	location string
	hint     migration.OverrideHint
	failed   bool
}

func (loaded *loadedFile) name() string {
	return loaded.pkg.Name + "/" + loaded.location
}

type loader struct {
	l       log.Logger
	opts    *Options
	engine  *migration.Engine
	files   *migration.FileSet
	log     *report.Log
	loaded  *xsync.MapOf[string, *loadedFile]
	byName  map[string]*Package
	baseIDs map[asset.ID]bool
}

// Load reads the package at rootManifest and everything it references, then migrates and binds
// every asset document. Package level problems abort the load. Asset level problems are recorded
// in the session log and the asset is left out. When ctx is canceled, the partially loaded session
// is returned together with the context error.
func Load(ctx context.Context, l log.Logger, rootManifest string, opts *Options) (*Session, error) {
	var session *Session

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "session_load", map[string]any{
		"manifest": rootManifest,
	}, func(ctx context.Context) error {
		var err error

		session, err = load(ctx, l, rootManifest, opts)

		return err
	})

	return session, err
}

func load(ctx context.Context, l log.Logger, rootManifest string, opts *Options) (*Session, error) {
	packages, err := loadPackages(ctx, l, rootManifest, opts.PackageDirs)
	if err != nil {
		return nil, err
	}

	ld := &loader{
		l:       l,
		opts:    opts,
		engine:  migration.NewEngine(opts.Registry),
		files:   migration.NewFileSet(),
		log:     report.NewLog(),
		loaded:  xsync.NewMapOf[string, *loadedFile](),
		byName:  make(map[string]*Package, len(packages)),
		baseIDs: make(map[asset.ID]bool),
	}

	var initial []*migration.AssetFile

	for _, pkg := range packages {
		ld.byName[pkg.Name] = pkg

		paths, err := enumerateAssetFiles(pkg)
		if err != nil {
			return nil, err
		}

		for _, path := range paths {
			file := migration.NewAssetFile(pkg.Name, path)
			if ld.files.Add(file) {
				initial = append(initial, file)
			}
		}
	}

	session := newSession(packages, ld.files, ld.log)

	// upgraders may add sibling files, those are migrated in further rounds
	for round := initial; len(round) > 0; round = ld.newFiles() {
		if err := ld.migrateRound(ctx, l, round); err != nil {
			return session, err
		}
	}

	ld.bind(l, session)

	return session, errors.New(ctx.Err())
}

// newFiles returns the files of the set that were not processed yet, sorted by path.
func (ld *loader) newFiles() []*migration.AssetFile {
	var files []*migration.AssetFile

	for _, file := range ld.files.Files() {
		if _, ok := ld.loaded.Load(file.FilePath); !ok {
			files = append(files, file)
		}
	}

	return files
}

func (ld *loader) parallelism() int {
	if ld.opts.Parallelism > 0 {
		return ld.opts.Parallelism
	}

	return runtime.NumCPU()
}

func (ld *loader) migrateRound(ctx context.Context, l log.Logger, round []*migration.AssetFile) error {
	parsed := make([]*loadedFile, len(round))

	pool := worker.NewWorkerPool(ld.parallelism())

	for i, file := range round {
		loaded := &loadedFile{file: file, pkg: ld.packageOf(file)}
		loaded.location = loaded.pkg.Location(file.FilePath)
		parsed[i] = loaded
		ld.loaded.Store(file.FilePath, loaded)

		pool.Submit(ctx, func(ctx context.Context) error {
			ld.parse(loaded)
			return nil
		})
	}

	if err := pool.Wait(); err != nil {
		return err
	}

	ld.recordSkipped(ctx, parsed, report.StageLoad)

	// hints need every archetype of the round, so they are computed between parse and migrate
	ld.scanArchetypes(parsed)

	pool = worker.NewWorkerPool(ld.parallelism())

	for _, loaded := range parsed {
		if loaded.doc == nil {
			continue
		}

		loaded.hint = ld.hintFor(loaded.doc)

		pool.Submit(ctx, func(ctx context.Context) error {
			ld.migrate(ctx, l, loaded)
			return nil
		})
	}

	if err := pool.Wait(); err != nil {
		return err
	}

	ld.recordSkipped(ctx, parsed, report.StageMigrate)

	return nil
}

func (ld *loader) packageOf(file *migration.AssetFile) *Package {
	if pkg, ok := ld.byName[file.Package]; ok {
		return pkg
	}

	// files added by upgraders without a package belong to the root
	for _, pkg := range ld.byName {
		if pkg.Index == 0 {
			return pkg
		}
	}

	return nil
}

func (ld *loader) parse(loaded *loadedFile) {
	data, err := loaded.file.Content()
	if err == nil {
		loaded.doc, err = document.Decode(data)
	}

	if err != nil {
		loaded.failed = true
		ld.record(loaded, report.StageLoad, report.WithError(err))
	}
}

func (ld *loader) scanArchetypes(parsed []*loadedFile) {
	for _, loaded := range parsed {
		if loaded.doc == nil {
			continue
		}

		if base, err := registry.ReadArchetype(loaded.doc); err == nil && base != nil {
			ld.baseIDs[base.ID] = true
		}
	}
}

func (ld *loader) hintFor(doc *document.Node) migration.OverrideHint {
	if base, err := registry.ReadArchetype(doc); err == nil && base != nil {
		return migration.HintDerived
	}

	if header, err := registry.ReadHeader(doc); err == nil && ld.baseIDs[header.ID] {
		return migration.HintBase
	}

	return migration.HintUnknown
}

func (ld *loader) migrate(ctx context.Context, l log.Logger, loaded *loadedFile) {
	l = l.WithField(log.FieldKeyLocation, loaded.location).WithField(log.FieldKeyPackage, loaded.pkg.Name)

	result, err := ld.engine.Migrate(ctx, l, loaded.doc, loaded.file, ld.files, loaded.hint)
	if err != nil {
		if errors.As(err, &migration.NoUpgraderChainError{}) {
			// unknown types are kept unmigrated and bind as unloadable content
			ld.record(loaded, report.StageMigrate,
				report.WithError(err),
				report.WithResult(report.ResultSkipped),
				report.WithReason(report.ReasonUnloadable))

			return
		}

		loaded.failed = true
		ld.record(loaded, report.StageMigrate, report.WithError(err))

		return
	}

	loaded.doc = result.Document
	loaded.result = result

	if result.Migrated() {
		l.Debugf("Migrated %s from version %d to %d", result.Tag, result.From, result.To)
		ld.record(loaded, report.StageMigrate, report.WithResult(report.ResultMigrated))

		return
	}

	ld.record(loaded, report.StageMigrate)
}

// recordSkipped logs the files a canceled round never reached.
func (ld *loader) recordSkipped(ctx context.Context, parsed []*loadedFile, stage report.Stage) {
	if ctx.Err() == nil {
		return
	}

	for _, loaded := range parsed {
		if loaded.failed || ld.log.GetEntry(loaded.name(), stage) != nil {
			continue
		}

		if stage == report.StageMigrate && loaded.doc == nil {
			continue
		}

		loaded.failed = true
		ld.record(loaded, stage, report.WithResult(report.ResultSkipped), report.WithReason(report.ReasonCanceled))
	}
}

func (ld *loader) record(loaded *loadedFile, stage report.Stage, opts ...report.EndOption) {
	id := ""

	if loaded.doc != nil {
		if header, err := registry.ReadHeader(loaded.doc); err == nil {
			id = header.ID.String()
		}
	}

	opts = append([]report.EndOption{report.WithAsset(id, loaded.file.FilePath)}, opts...)

	if err := ld.log.Record(loaded.name(), stage, opts...); err != nil {
		ld.l.Warnf("Failed to record %s: %v", loaded.name(), err)
	}
}

// bind turns the surviving documents into items, in package load order then file order.
func (ld *loader) bind(l log.Logger, session *Session) {
	ordinal := 0

	for _, file := range ld.files.Files() {
		loaded, ok := ld.loaded.Load(file.FilePath)
		if !ok {
			continue
		}

		if file.Deleted() {
			if !loaded.failed {
				ld.record(loaded, report.StageBind, report.WithResult(report.ResultSkipped), report.WithReason(report.ReasonDeleted))
			}

			continue
		}

		if loaded.failed || loaded.doc == nil {
			continue
		}

		if loaded.result != nil && (loaded.result.Migrated() || file.HasOverride()) {
			session.dirty[file.FilePath] = loaded.doc
		}
	}

	for _, pkg := range session.packages {
		for _, file := range ld.files.Files() {
			loaded, ok := ld.loaded.Load(file.FilePath)
			if !ok || loaded.pkg != pkg || loaded.failed || loaded.doc == nil || file.Deleted() {
				continue
			}

			bound, err := ld.opts.Registry.Bind(loaded.doc)
			if err != nil {
				ld.record(loaded, report.StageBind, report.WithError(err))
				continue
			}

			if existing, ok := session.byID[bound.ID]; ok {
				ld.record(loaded, report.StageBind, report.WithError(errors.New(DuplicateAssetError{
					ID:       bound.ID,
					Location: loaded.location,
					Existing: existing.Location,
				})))

				continue
			}

			item := &asset.Item{
				Asset:    bound,
				Document: loaded.doc,
				Location: loaded.location,
				Package:  pkg.Name,
				FilePath: file.FilePath,
				Ordinal:  ordinal,
			}
			ordinal++

			if bound.IsUnloadable() {
				l.Warnf("Asset %s has unknown type %s and is kept unloadable", loaded.location, bound.Type)
			}

			pkg.Items = append(pkg.Items, item)
			session.byID[bound.ID] = item
			session.owners[bound.ID] = pkg
		}
	}
}
