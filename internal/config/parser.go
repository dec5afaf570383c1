package config

import (
	"os"
	"path/filepath"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// ProjectConfig is the content of a project file. Relative paths are resolved against
// the directory of the file when it is parsed.
type ProjectConfig struct {
	Build        *BuildConfig     `hcl:"build,block"`
	Telemetry    *TelemetryConfig `hcl:"telemetry,block"`
	Parallelism  *int             `hcl:"parallelism,optional"`
	RootManifest string           `hcl:"root_manifest,optional"`
	CacheDir     string           `hcl:"cache_dir,optional"`
	LogLevel     string           `hcl:"log_level,optional"`
	LogFormat    string           `hcl:"log_format,optional"`
	PackageDirs  []string         `hcl:"package_dirs,optional"`

	// SourceFile is the absolute path of the parsed file.
	SourceFile string
}

// BuildConfig holds the defaults of the build and plan commands.
type BuildConfig struct {
	AllRoots   *bool  `hcl:"all_roots,optional"`
	FailFast   *bool  `hcl:"fail_fast,optional"`
	ReportFile string `hcl:"report_file,optional"`
}

// TelemetryConfig selects the telemetry exporter.
type TelemetryConfig struct {
	Exporter string `hcl:"exporter"`
}

// ParseConfigFile reads and decodes the project file at path.
func ParseConfigFile(path string) (*ProjectConfig, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.New(err)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(ConfigError{Path: path, Err: err})
	}

	return parse(path, src, processEnv())
}

func parse(path string, src []byte, environ []string) (*ProjectConfig, error) {
	projectDir := filepath.Dir(path)
	cfg := &ProjectConfig{}

	if err := hclsimple.Decode(path, src, evalContext(projectDir, environ), cfg); err != nil {
		return nil, errors.New(ConfigError{Path: path, Err: err})
	}

	cfg.SourceFile = path
	cfg.RootManifest = resolve(projectDir, cfg.RootManifest)
	cfg.CacheDir = resolve(projectDir, cfg.CacheDir)

	for i, dir := range cfg.PackageDirs {
		cfg.PackageDirs[i] = resolve(projectDir, dir)
	}

	if cfg.Build != nil {
		cfg.Build.ReportFile = resolve(projectDir, cfg.Build.ReportFile)
	}

	return cfg, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}
