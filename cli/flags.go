package cli

import (
	"strings"

	"github.com/gruntwork-io/assetflow/options"
	"github.com/urfave/cli/v2"
)

// EnvVarPrefix is prepended to the upper snake case name of every global flag.
const EnvVarPrefix = "AF_"

// EnvVars returns the environment variables that can set the flag named name.
func EnvVars(name string) []string {
	return []string{EnvVarPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}

// NewGlobalFlags returns the flags every command accepts.
func NewGlobalFlags(opts *options.AssetflowOptions) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        options.SettingWorkingDir,
			EnvVars:     EnvVars(options.SettingWorkingDir),
			Destination: &opts.WorkingDir,
			Value:       opts.WorkingDir,
			DefaultText: "current directory",
			Usage:       "The directory relative paths are resolved against.",
		},
		&cli.StringFlag{
			Name:        options.SettingConfig,
			EnvVars:     EnvVars(options.SettingConfig),
			Destination: &opts.ConfigPath,
			Usage:       "Path to the project file. Searched upwards from the working directory when not given.",
		},
		&cli.StringFlag{
			Name:        options.SettingManifest,
			EnvVars:     EnvVars(options.SettingManifest),
			Destination: &opts.RootManifest,
			Usage:       "Path to the manifest of the root package.",
		},
		&cli.StringFlag{
			Name:        options.SettingLogLevel,
			EnvVars:     EnvVars(options.SettingLogLevel),
			Destination: &opts.LogLevel,
			Value:       opts.LogLevel,
			Usage:       "Sets the logging level: trace, debug, info, warn, error.",
		},
		&cli.StringFlag{
			Name:        options.SettingLogFormat,
			EnvVars:     EnvVars(options.SettingLogFormat),
			Destination: &opts.LogFormat,
			Value:       opts.LogFormat,
			Usage:       "Sets the log format: text or json.",
		},
		&cli.IntFlag{
			Name:        options.SettingParallelism,
			EnvVars:     EnvVars(options.SettingParallelism),
			Destination: &opts.Parallelism,
			Value:       opts.Parallelism,
			Usage:       "Maximum number of assets loaded, hashed or built at once.",
		},
		&cli.StringFlag{
			Name:        options.SettingCacheDir,
			EnvVars:     EnvVars(options.SettingCacheDir),
			Destination: &opts.CacheDir,
			Value:       opts.CacheDir,
			Usage:       "The directory of the build cache.",
		},
		&cli.StringSliceFlag{
			Name:    options.SettingPackageDir,
			EnvVars: EnvVars(options.SettingPackageDir),
			Usage:   "A directory searched for packages referenced by name. May be repeated.",
			Action: func(_ *cli.Context, dirs []string) error {
				opts.PackageDirs = dirs
				return nil
			},
		},
		&cli.StringFlag{
			Name:        options.SettingTelemetryExporter,
			EnvVars:     EnvVars(options.SettingTelemetryExporter),
			Destination: &opts.TelemetryExporter,
			Usage:       "Exporter of traces and metrics: none or console.",
		},
		&cli.StringFlag{
			Name:        options.SettingReportFile,
			EnvVars:     EnvVars(options.SettingReportFile),
			Destination: &opts.ReportFile,
			Usage:       "Write a per asset report to this file. The format follows the extension: .csv or .json.",
		},
		&cli.BoolFlag{
			Name:        options.SettingNoColor,
			EnvVars:     EnvVars(options.SettingNoColor),
			Destination: &opts.NoColor,
			Usage:       "Disable colors in the summary and the logs.",
		},
	}
}
