package buildgraph

import (
	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/gruntwork-io/assetflow/internal/hashing"
)

// Status tells whether a step has to run.
type Status uint8

const (
	// StatusFresh steps have no cached outputs and run their commands.
	StatusFresh Status = iota
	// StatusReused steps have a manifest under their build key and do not run.
	StatusReused
)

func (status Status) String() string {
	if status == StatusReused {
		return "reused"
	}

	return "fresh"
}

// Step builds one asset item.
type Step struct {
	Item *asset.Item
	// Commands are empty for reused steps.
	Commands []compiler.Command
	// Predecessors are the steps of the item's CompileContent dependencies.
	Predecessors []*Step
	Dependencies []asset.Dependency
	BuildKey     hashing.ObjectID
	Status       Status
	// Index is the position of the step in the plan.
	Index int
}

// Location returns the location of the built item.
func (step *Step) Location() string {
	return step.Item.Location
}

// Failure is an asset that cannot be built.
type Failure struct {
	Item *asset.Item
	Err  error
}
