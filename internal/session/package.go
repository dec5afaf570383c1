package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

const (
	// ManifestExt is the file extension of package manifests.
	ManifestExt = ".afpkg"
	// AssetExt is the file extension of asset documents.
	AssetExt = ".afasset"
	// DefaultAssetFolder is used when a manifest lists no asset folders.
	DefaultAssetFolder = "Assets"
)

// Manifest is the on-disk description of a package.
type Manifest struct {
	Meta         ManifestMeta      `yaml:"Meta"`
	AssetFolders []string          `yaml:"AssetFolders,omitempty"`
	RootAssets   []asset.Reference `yaml:"RootAssets,omitempty"`
	ID           asset.ID          `yaml:"Id"`
}

// ManifestMeta names the package and its dependencies.
type ManifestMeta struct {
	Name         string             `yaml:"Name"`
	Version      string             `yaml:"Version"`
	Dependencies []PackageReference `yaml:"Dependencies,omitempty"`
}

// PackageReference points at another package by name and version constraint.
// Path, relative to the referencing manifest, is optional; without it the package
// is searched for by name in the package directories.
type PackageReference struct {
	Name    string `yaml:"Name"`
	Version string `yaml:"Version,omitempty"`
	Path    string `yaml:"Path,omitempty"`
}

// ReadManifest parses the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(ManifestError{Path: path, Err: err})
	}

	manifest := &Manifest{}
	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, errors.New(ManifestError{Path: path, Err: err})
	}

	if manifest.Meta.Name == "" {
		manifest.Meta.Name = strings.TrimSuffix(filepath.Base(path), ManifestExt)
	}

	if len(manifest.AssetFolders) == 0 {
		manifest.AssetFolders = []string{DefaultAssetFolder}
	}

	return manifest, nil
}

// Package is a loaded package and the asset items bound from its documents.
type Package struct {
	Manifest *Manifest
	Version  *version.Version
	Name     string
	// FilePath is the manifest path, Dir the directory holding it.
	FilePath string
	Dir      string
	Items    []*asset.Item
	// Index is the position of the package in load order.
	Index int
}

func newPackage(path string, manifest *Manifest, index int) (*Package, error) {
	raw := manifest.Meta.Version
	if raw == "" {
		raw = "0.0.0"
	}

	ver, err := version.NewVersion(raw)
	if err != nil {
		return nil, errors.New(ManifestError{Path: path, Err: err})
	}

	return &Package{
		Manifest: manifest,
		Version:  ver,
		Name:     manifest.Meta.Name,
		FilePath: path,
		Dir:      filepath.Dir(path),
		Index:    index,
	}, nil
}

// Satisfies reports whether the package version matches constraint. An empty constraint matches any version.
func (pkg *Package) Satisfies(constraint string) (bool, error) {
	if strings.TrimSpace(constraint) == "" {
		return true, nil
	}

	constraints, err := version.NewConstraint(constraint)
	if err != nil {
		return false, errors.New(err)
	}

	return constraints.Check(pkg.Version), nil
}

// AssetFolders returns the absolute asset folder paths.
func (pkg *Package) AssetFolders() []string {
	folders := make([]string, 0, len(pkg.Manifest.AssetFolders))

	for _, folder := range pkg.Manifest.AssetFolders {
		if !filepath.IsAbs(folder) {
			folder = filepath.Join(pkg.Dir, folder)
		}

		folders = append(folders, filepath.Clean(folder))
	}

	return folders
}

// Location returns the virtual path of an asset file: relative to the asset folder holding it,
// forward slashes, no extension.
func (pkg *Package) Location(filePath string) string {
	base := pkg.Dir

	for _, folder := range pkg.AssetFolders() {
		if rel, err := filepath.Rel(folder, filePath); err == nil && !strings.HasPrefix(rel, "..") {
			base = folder
			break
		}
	}

	rel, err := filepath.Rel(base, filePath)
	if err != nil {
		rel = filepath.Base(filePath)
	}

	return strings.TrimSuffix(filepath.ToSlash(rel), AssetExt)
}

// RootIDs returns the ids of the assets the package always keeps.
func (pkg *Package) RootIDs() []asset.ID {
	ids := make([]asset.ID, 0, len(pkg.Manifest.RootAssets))
	for _, ref := range pkg.Manifest.RootAssets {
		ids = append(ids, ref.ID)
	}

	return ids
}

// FilePathFor returns where an asset at location is stored in the first asset folder.
func (pkg *Package) FilePathFor(location string) string {
	return filepath.Join(pkg.AssetFolders()[0], filepath.FromSlash(location)+AssetExt)
}
