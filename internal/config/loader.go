package config

import (
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

// IsSetFunc reports whether a setting was given explicitly, as a flag or an environment variable.
type IsSetFunc func(setting string) bool

// Load finds the project file of opts, parses it and applies it. It returns nil without
// error when there is no project file.
func Load(l log.Logger, opts *options.AssetflowOptions, isSet IsSetFunc) (*ProjectConfig, error) {
	path := opts.Path(opts.ConfigPath)

	if path == "" {
		found, err := FindConfigFile(l, opts.WorkingDir)
		if err != nil {
			return nil, err
		}

		if found == "" {
			return nil, nil
		}

		path = found
	}

	cfg, err := ParseConfigFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Apply(l, opts, isSet); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Apply copies the values of the file into opts for every setting that was not given explicitly.
func (cfg *ProjectConfig) Apply(l log.Logger, opts *options.AssetflowOptions, isSet IsSetFunc) error {
	applied := 0

	set := func(setting string, present bool, apply func()) {
		if !present || isSet(setting) {
			return
		}

		apply()

		applied++

		l.Debugf("Applied %s from %s", setting, cfg.SourceFile)
	}

	set(options.SettingManifest, cfg.RootManifest != "", func() { opts.RootManifest = cfg.RootManifest })
	set(options.SettingCacheDir, cfg.CacheDir != "", func() { opts.CacheDir = cfg.CacheDir })
	set(options.SettingPackageDir, len(cfg.PackageDirs) > 0, func() { opts.PackageDirs = append([]string(nil), cfg.PackageDirs...) })

	if cfg.LogLevel != "" {
		if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
			return errors.New(ConfigError{Path: cfg.SourceFile, Setting: "log_level", Err: err})
		}
	}

	set(options.SettingLogLevel, cfg.LogLevel != "", func() { opts.LogLevel = cfg.LogLevel })

	if _, err := log.WithFormat(cfg.LogFormat, true); err != nil {
		return errors.New(ConfigError{Path: cfg.SourceFile, Setting: "log_format", Err: err})
	}

	set(options.SettingLogFormat, cfg.LogFormat != "", func() { opts.LogFormat = cfg.LogFormat })

	if cfg.Parallelism != nil && *cfg.Parallelism <= 0 {
		return errors.New(ConfigError{Path: cfg.SourceFile, Setting: "parallelism", Err: errors.Errorf("must be positive, got %d", *cfg.Parallelism)})
	}

	set(options.SettingParallelism, cfg.Parallelism != nil, func() { opts.Parallelism = *cfg.Parallelism })

	if cfg.Telemetry != nil {
		set(options.SettingTelemetryExporter, cfg.Telemetry.Exporter != "", func() { opts.TelemetryExporter = cfg.Telemetry.Exporter })
	}

	if build := cfg.Build; build != nil {
		set(options.SettingAllRoots, build.AllRoots != nil, func() { opts.AllRoots = *build.AllRoots })
		set(options.SettingFailFast, build.FailFast != nil, func() { opts.FailFast = *build.FailFast })
		set(options.SettingReportFile, build.ReportFile != "", func() { opts.ReportFile = build.ReportFile })
	}

	l.Debugf("Applied %d settings from %s", applied, cfg.SourceFile)

	return nil
}
