// Package options provides a set of options that configure the behavior of the assetflow program.
package options

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/huandu/go-clone"
)

const (
	// DefaultCacheDir is the build cache location, relative to the working directory.
	DefaultCacheDir = ".assetflow/cache"

	// DefaultReportFormat is used when the report file has no known extension.
	DefaultReportFormat = "csv"

	defaultLogLevel = log.InfoLevel
)

// Names of the settings that can come from a flag, an AF_* environment variable or the
// project file, in decreasing precedence. They double as CLI flag names.
const (
	SettingWorkingDir        = "working-dir"
	SettingConfig            = "config"
	SettingManifest          = "manifest"
	SettingLogLevel          = "log-level"
	SettingLogFormat         = "log-format"
	SettingParallelism       = "parallelism"
	SettingCacheDir          = "cache-dir"
	SettingPackageDir        = "package-dir"
	SettingTelemetryExporter = "telemetry-exporter"
	SettingReportFile        = "report-file"
	SettingAllRoots          = "all-roots"
	SettingFailFast          = "fail-fast"
	SettingNoColor           = "no-color"
)

// DefaultParallelism is the number of assets loaded, hashed or built at once.
var DefaultParallelism = runtime.NumCPU()

// AssetflowOptions represents options that configure the behavior of the assetflow program.
type AssetflowOptions struct {
	Writer    io.Writer `clone:"shadowcopy"`
	ErrWriter io.Writer `clone:"shadowcopy"`
	Logger    log.Logger `clone:"shadowcopy"`

	// WorkingDir is the directory the relative paths below are resolved against.
	WorkingDir string
	// ConfigPath is the project file; empty means search from WorkingDir.
	ConfigPath string
	// RootManifest is the package manifest the session starts from.
	RootManifest string
	CacheDir     string
	ReportFile   string
	LogLevel     string
	LogFormat    string

	TelemetryExporter string

	// PackageDirs are searched for packages referenced by name.
	PackageDirs []string
	HashFlags   []string

	Parallelism int

	AllRoots bool
	FailFast bool
	Write    bool
	JSON     bool
	NoColor  bool
}

// NewAssetflowOptions returns the default options.
func NewAssetflowOptions() *AssetflowOptions {
	return NewAssetflowOptionsWithWriters(os.Stdout, os.Stderr)
}

// NewAssetflowOptionsWithWriters returns the default options writing to the given writers.
func NewAssetflowOptionsWithWriters(stdout, stderr io.Writer) *AssetflowOptions {
	workingDir, err := os.Getwd()
	if err != nil {
		workingDir = "."
	}

	return &AssetflowOptions{
		Writer:      stdout,
		ErrWriter:   stderr,
		Logger:      log.New(log.WithOutput(stderr), log.WithLevel(defaultLogLevel)),
		WorkingDir:  workingDir,
		CacheDir:    DefaultCacheDir,
		LogLevel:    defaultLogLevel.String(),
		LogFormat:   log.TextFormat,
		Parallelism: DefaultParallelism,
		PackageDirs: []string{},
		HashFlags:   []string{},
	}
}

// Clone returns a deep copy of the options. Writers and the logger are shared.
func (opts *AssetflowOptions) Clone() *AssetflowOptions {
	return clone.Clone(opts).(*AssetflowOptions)
}

// Path resolves path against the working directory.
func (opts *AssetflowOptions) Path(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(opts.WorkingDir, path)
}

// ResolvedPackageDirs returns the package search directories as absolute paths.
func (opts *AssetflowOptions) ResolvedPackageDirs() []string {
	dirs := make([]string, 0, len(opts.PackageDirs))
	for _, dir := range opts.PackageDirs {
		dirs = append(dirs, opts.Path(dir))
	}

	return dirs
}
