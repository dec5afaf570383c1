// Package common holds the pieces shared by the commands that operate on a loaded session.
package common

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gruntwork-io/assetflow/internal/assettypes"
	"github.com/gruntwork-io/assetflow/internal/buildcache"
	"github.com/gruntwork-io/assetflow/internal/buildgraph"
	"github.com/gruntwork-io/assetflow/internal/cache"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/hashing"
	"github.com/gruntwork-io/assetflow/internal/registry"
	"github.com/gruntwork-io/assetflow/internal/report"
	"github.com/gruntwork-io/assetflow/internal/session"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-zglob"
)

// Env is the state a command works on.
type Env struct {
	Registry *registry.Registry
	Session  *session.Session
	Opts     *options.AssetflowOptions
}

// Load builds the registry of the built-in asset types and loads the session of the root package.
// Asset level load problems are left in the session log; only package level problems fail.
func Load(ctx context.Context, l log.Logger, opts *options.AssetflowOptions) (*Env, error) {
	reg, err := assettypes.NewRegistry()
	if err != nil {
		return nil, err
	}

	manifest, err := RootManifest(opts)
	if err != nil {
		return nil, err
	}

	l.Debugf("Loading package %s", manifest)

	sess, err := session.Load(ctx, l.WithField(log.FieldKeyStage, report.StageLoad), manifest, &session.Options{
		Registry:    reg,
		PackageDirs: opts.ResolvedPackageDirs(),
		Parallelism: opts.Parallelism,
	})
	if err != nil {
		return nil, err
	}

	return &Env{Registry: reg, Session: sess, Opts: opts}, nil
}

// RootManifest returns the configured root manifest, or the only manifest of the working directory.
func RootManifest(opts *options.AssetflowOptions) (string, error) {
	if opts.RootManifest != "" {
		return opts.Path(opts.RootManifest), nil
	}

	matches, err := zglob.Glob(filepath.Join(opts.WorkingDir, "*"+session.ManifestExt))
	if err != nil && !os.IsNotExist(err) {
		return "", errors.New(err)
	}

	if len(matches) != 1 {
		return "", errors.New(RootManifestError{Dir: opts.WorkingDir, Found: matches})
	}

	return matches[0], nil
}

// Store opens the build cache of opts.
func (env *Env) Store(l log.Logger) buildcache.Store {
	return buildcache.NewDiskStore(l, env.Opts.Path(env.Opts.CacheDir))
}

// Resolve builds the plan of the session. Store may be nil, then no step is reused.
func (env *Env) Resolve(ctx context.Context, l log.Logger, store buildcache.Store) (*buildgraph.Plan, error) {
	resolver := buildgraph.NewResolver(&buildgraph.Options{
		Registry:    env.Registry,
		Store:       store,
		Memo:        cache.NewCache[hashing.ObjectID]("hash"),
		AllRoots:    env.Opts.AllRoots,
		Parallelism: env.Opts.Parallelism,
	})

	plan, err := resolver.Resolve(ctx, l.WithField(log.FieldKeyStage, report.StageResolve), env.Session)
	if err != nil {
		return nil, err
	}

	plan.Record(l, env.Session.Log)

	return plan, nil
}

// Finish writes the summary to the error writer and the report file when one is configured.
// It returns an error when the log holds failures.
func (env *Env) Finish(l log.Logger) error {
	reportLog := env.Session.Log

	if err := reportLog.WriteSummary(env.Opts.ErrWriter, report.NewColorizer(ShouldColor(env.Opts))); err != nil {
		return err
	}

	if env.Opts.ReportFile != "" {
		path := env.Opts.Path(env.Opts.ReportFile)

		if err := reportLog.WriteToFile(path); err != nil {
			return err
		}

		l.Debugf("Report written to %s", path)
	}

	if failures := reportLog.Failures(); len(failures) > 0 {
		if err := reportLog.WriteFailures(env.Opts.ErrWriter); err != nil {
			return err
		}

		return errors.New(FailuresError{Count: len(failures)})
	}

	return nil
}

// ShouldColor reports whether output to the error writer should be colored.
func ShouldColor(opts *options.AssetflowOptions) bool {
	if opts.NoColor {
		return false
	}

	file, ok := opts.ErrWriter.(*os.File)

	return ok && (isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd()))
}
