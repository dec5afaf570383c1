// Package compiler defines the contract between the build resolver and the per-type asset compilers.
package compiler

import (
	"context"

	"github.com/gruntwork-io/assetflow/internal/asset"
)

// Compiler turns an asset item into build commands.
type Compiler interface {
	// EnumerateDependencies lists the assets the item depends on and how.
	EnumerateDependencies(item *asset.Item) ([]asset.Dependency, error)
	// Prepare returns the ordered commands that build the item.
	Prepare(ctx context.Context, item *asset.Item) ([]Command, error)
}

// InputLister is implemented by compilers whose commands read source files. The content of the
// listed files goes into the build key, so editing a source invalidates the build.
type InputLister interface {
	// InputFiles returns the source files of item, relative to the directory of its package.
	InputFiles(item *asset.Item) ([]string, error)
}

// Environment gives running commands access to their inputs.
type Environment interface {
	// Output returns the content built at url by an earlier command of the step or by a step
	// the command depends on.
	Output(url string) ([]byte, error)
	// OutputOf returns the output with the given suffix of the dependency with id, whatever
	// location the referencing asset recorded for it.
	OutputOf(id asset.ID, suffix string) ([]byte, error)
	// Source returns the content of a source file, relative to the package of the asset.
	Source(path string) ([]byte, error)
}

// Command produces one build output.
type Command interface {
	Name() string
	// OutputURL is where the result is published. It is unique within a build.
	OutputURL() string
	Execute(ctx context.Context, env Environment) ([]byte, error)
}

// ExecuteFunc is the body of a function backed command.
type ExecuteFunc func(ctx context.Context, env Environment) ([]byte, error)

type funcCommand struct {
	fn   ExecuteFunc
	name string
	url  string
}

// NewCommand returns a command running fn.
func NewCommand(name, outputURL string, fn ExecuteFunc) Command {
	return &funcCommand{name: name, url: outputURL, fn: fn}
}

func (cmd *funcCommand) Name() string      { return cmd.name }
func (cmd *funcCommand) OutputURL() string { return cmd.url }

func (cmd *funcCommand) Execute(ctx context.Context, env Environment) ([]byte, error) {
	return cmd.fn(ctx, env)
}

// OutputURL returns the canonical output url of a command of the given item.
func OutputURL(item *asset.Item, suffix string) string {
	if suffix == "" {
		return item.Location
	}

	return item.Location + "/" + suffix
}
