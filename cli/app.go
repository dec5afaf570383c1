// Package cli wires the assetflow commands into a urfave/cli application.
package cli

import (
	"path/filepath"

	"github.com/gruntwork-io/assetflow/cli/commands/build"
	"github.com/gruntwork-io/assetflow/cli/commands/graph"
	"github.com/gruntwork-io/assetflow/cli/commands/hash"
	"github.com/gruntwork-io/assetflow/cli/commands/migrate"
	"github.com/gruntwork-io/assetflow/cli/commands/plan"
	"github.com/gruntwork-io/assetflow/internal/config"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/gruntwork-io/assetflow/telemetry"
	"github.com/urfave/cli/v2"
)

const AppName = "assetflow"

// Version is set at build time.
var Version = "dev"

// NewApp creates the assetflow CLI App.
func NewApp(opts *options.AssetflowOptions) *cli.App {
	app := cli.NewApp()
	app.Name = AppName
	app.Usage = "Migrates, hashes and builds versioned asset packages."
	app.UsageText = "assetflow [global options] <command> [command options]"
	app.Version = Version
	app.Writer = opts.Writer
	app.ErrWriter = opts.ErrWriter
	app.Flags = NewGlobalFlags(opts)
	app.Commands = []*cli.Command{
		migrate.NewCommand(opts),
		plan.NewCommand(opts),
		build.NewCommand(opts),
		hash.NewCommand(opts),
		graph.NewCommand(opts),
	}
	app.Before = beforeRunningCommand(opts)
	app.After = afterRunningCommand
	cli.OsExiter = osExiter

	return app
}

func beforeRunningCommand(opts *options.AssetflowOptions) cli.BeforeFunc {
	return func(ctx *cli.Context) error {
		if err := initialSetup(ctx, opts); err != nil {
			return err
		}

		tlm, err := telemetry.NewTelemeter(ctx.Context, AppName, Version, opts.ErrWriter, &telemetry.Options{
			TraceExporter:  opts.TelemetryExporter,
			MetricExporter: opts.TelemetryExporter,
		})
		if err != nil {
			return err
		}

		ctx.Context = telemetry.ContextWithTelemeter(ctx.Context, tlm)
		ctx.Context = log.ContextWithLogger(ctx.Context, opts.Logger)

		return nil
	}
}

func afterRunningCommand(ctx *cli.Context) error {
	return telemetry.TelemeterFromContext(ctx.Context).Shutdown(ctx.Context)
}

// initialSetup resolves the settings in their order of precedence: flags and environment
// variables, then the project file, then the defaults.
func initialSetup(ctx *cli.Context, opts *options.AssetflowOptions) error {
	workingDir, err := filepath.Abs(opts.WorkingDir)
	if err != nil {
		return errors.New(err)
	}

	opts.WorkingDir = filepath.ToSlash(workingDir)

	if _, err := config.Load(opts.Logger, opts, ctx.IsSet); err != nil {
		return err
	}

	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		return errors.New(err)
	}

	format, err := log.WithFormat(opts.LogFormat, opts.NoColor)
	if err != nil {
		return err
	}

	opts.Logger.SetOptions(log.WithLevel(level), format)

	if opts.Parallelism <= 0 {
		return errors.Errorf("--%s must be positive, got %d", options.SettingParallelism, opts.Parallelism)
	}

	return nil
}

func osExiter(exitCode int) {
	// Do nothing. We just need to override this function, as the default value calls os.Exit, which
	// kills the app (or any automated test) dead in its tracks.
}
