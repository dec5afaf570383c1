package session

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/mattn/go-zglob"
)

type pendingReference struct {
	ref        PackageReference
	requiredBy *Package
}

// loadPackages reads the root manifest and the manifests it references transitively, breadth first.
// The returned slice is in load order, root first.
func loadPackages(ctx context.Context, l log.Logger, rootPath string, packageDirs []string) ([]*Package, error) {
	rootPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, errors.New(err)
	}

	manifest, err := ReadManifest(rootPath)
	if err != nil {
		return nil, err
	}

	root, err := newPackage(rootPath, manifest, 0)
	if err != nil {
		return nil, err
	}

	packages := []*Package{root}
	byName := map[string]*Package{root.Name: root}

	queue := referencesOf(root)

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(err)
		}

		pending := queue[0]
		queue = queue[1:]

		if loaded, ok := byName[pending.ref.Name]; ok {
			if err := checkConstraint(loaded, pending); err != nil {
				return nil, err
			}

			continue
		}

		path, err := findManifest(pending, packageDirs)
		if err != nil {
			return nil, err
		}

		manifest, err := ReadManifest(path)
		if err != nil {
			return nil, err
		}

		pkg, err := newPackage(path, manifest, len(packages))
		if err != nil {
			return nil, err
		}

		if err := checkConstraint(pkg, pending); err != nil {
			return nil, err
		}

		l.Debugf("Loaded package %s %s from %s", pkg.Name, pkg.Version, path)

		packages = append(packages, pkg)
		byName[pkg.Name] = pkg
		queue = append(queue, referencesOf(pkg)...)
	}

	return packages, nil
}

func referencesOf(pkg *Package) []pendingReference {
	refs := make([]pendingReference, 0, len(pkg.Manifest.Meta.Dependencies))
	for _, ref := range pkg.Manifest.Meta.Dependencies {
		refs = append(refs, pendingReference{ref: ref, requiredBy: pkg})
	}

	return refs
}

func checkConstraint(pkg *Package, pending pendingReference) error {
	ok, err := pkg.Satisfies(pending.ref.Version)
	if err != nil {
		return errors.New(ManifestError{Path: pending.requiredBy.FilePath, Err: err})
	}

	if !ok {
		return errors.New(PackageVersionConflictError{
			Name:       pkg.Name,
			Version:    pkg.Version.String(),
			Constraint: pending.ref.Version,
			RequiredBy: pending.requiredBy.Name,
		})
	}

	return nil
}

// findManifest resolves a reference by path relative to the referencing package,
// or by name in the package directories when it has no path.
func findManifest(pending pendingReference, packageDirs []string) (string, error) {
	notFound := PackageNotFoundError{Name: pending.ref.Name, RequiredBy: pending.requiredBy.Name}

	if pending.ref.Path != "" {
		path := pending.ref.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(pending.requiredBy.Dir, path)
		}

		if _, err := os.Stat(path); err != nil {
			notFound.Path = path
			return "", errors.New(notFound)
		}

		return path, nil
	}

	for _, dir := range packageDirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		matches, err := glob(filepath.Join(dir, "**", pending.ref.Name+ManifestExt))
		if err != nil {
			return "", err
		}

		if len(matches) > 0 {
			sort.Strings(matches)

			return filepath.Abs(matches[0])
		}
	}

	return "", errors.New(notFound)
}

// enumerateAssetFiles returns the asset document paths of a package, sorted.
func enumerateAssetFiles(pkg *Package) ([]string, error) {
	var files []string

	for _, folder := range pkg.AssetFolders() {
		if info, err := os.Stat(folder); err != nil || !info.IsDir() {
			continue
		}

		matches, err := glob(filepath.Join(folder, "**", "*"+AssetExt))
		if err != nil {
			return nil, err
		}

		files = append(files, matches...)
	}

	sort.Strings(files)

	return files, nil
}

// glob matches pattern with "**" support. No match is not an error.
func glob(pattern string) ([]string, error) {
	matches, err := zglob.Glob(pattern)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.New(err)
	}

	return matches, nil
}
