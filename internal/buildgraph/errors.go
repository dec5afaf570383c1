package buildgraph

import (
	"fmt"
	"strings"

	"github.com/gruntwork-io/assetflow/internal/asset"
)

// CompilerNotFoundError is returned for an asset whose type has no registered compiler.
type CompilerNotFoundError struct {
	Location string
	Tag      string
}

func (err CompilerNotFoundError) Error() string {
	return fmt.Sprintf("no compiler registered for type %s of asset %s", err.Tag, err.Location)
}

// MissingDependencyTargetError is returned for an asset depending on an asset that is not in the session.
type MissingDependencyTargetError struct {
	Location string
	Target   asset.Reference
}

func (err MissingDependencyTargetError) Error() string {
	return fmt.Sprintf("asset %s depends on %s which is not in the session", err.Location, err.Target)
}

// CyclicDependencyError is returned for every asset of a dependency cycle.
// Cycle starts and ends with the same location.
type CyclicDependencyError struct {
	Cycle []string
}

func (err CyclicDependencyError) Error() string {
	return "dependency cycle: " + strings.Join(err.Cycle, " -> ")
}

// DependencyFailedError is returned for an asset one of whose build inputs failed.
type DependencyFailedError struct {
	Location   string
	Dependency string
}

func (err DependencyFailedError) Error() string {
	return fmt.Sprintf("asset %s cannot be built because its dependency %s failed", err.Location, err.Dependency)
}

// CompilerError wraps an error returned by a compiler for an asset.
type CompilerError struct {
	Err      error
	Location string
	Op       string
}

func (err CompilerError) Error() string {
	return fmt.Sprintf("%s %s: %v", err.Op, err.Location, err.Err)
}

func (err CompilerError) Unwrap() error {
	return err.Err
}

// InputFileError is returned when a source file of an asset cannot be read.
type InputFileError struct {
	Err      error
	Location string
	Path     string
}

func (err InputFileError) Error() string {
	return fmt.Sprintf("source %s of %s: %v", err.Path, err.Location, err.Err)
}

func (err InputFileError) Unwrap() error {
	return err.Err
}
