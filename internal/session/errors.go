package session

import (
	"fmt"

	"github.com/gruntwork-io/assetflow/internal/asset"
)

// PackageNotFoundError is returned when a referenced package manifest cannot be found.
type PackageNotFoundError struct {
	Name       string
	Path       string
	RequiredBy string
}

func (err PackageNotFoundError) Error() string {
	if err.Path != "" {
		return fmt.Sprintf("package %s required by %s not found at %s", err.Name, err.RequiredBy, err.Path)
	}

	return fmt.Sprintf("package %s required by %s not found in any package directory", err.Name, err.RequiredBy)
}

// PackageVersionConflictError is returned when a package version does not satisfy a constraint on it.
type PackageVersionConflictError struct {
	Name       string
	Version    string
	Constraint string
	RequiredBy string
}

func (err PackageVersionConflictError) Error() string {
	return fmt.Sprintf("package %s %s does not satisfy constraint %q of %s", err.Name, err.Version, err.Constraint, err.RequiredBy)
}

// ManifestError is returned when a package manifest cannot be read or parsed.
type ManifestError struct {
	Err  error
	Path string
}

func (err ManifestError) Error() string {
	return fmt.Sprintf("invalid package manifest %s: %v", err.Path, err.Err)
}

func (err ManifestError) Unwrap() error {
	return err.Err
}

// DuplicateAssetError is reported for an asset whose id is already used by another asset.
type DuplicateAssetError struct {
	Location string
	Existing string
	ID       asset.ID
}

func (err DuplicateAssetError) Error() string {
	return fmt.Sprintf("asset %s at %s has the same id as %s", err.ID, err.Location, err.Existing)
}

// AssetNotFoundError is returned when no asset of the session has the requested id or location.
type AssetNotFoundError struct {
	Key string
}

func (err AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset %s not found in session", err.Key)
}
