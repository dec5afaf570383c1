package migration

import (
	"context"
	"sort"

	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

// OverrideHint tells an upgrader how the document relates to archetypes.
type OverrideHint uint8

const (
	// HintUnknown is used when the relation could not be determined.
	HintUnknown OverrideHint = iota
	// HintDerived means the document is derived from an archetype.
	HintDerived
	// HintBase means another document uses this one as its archetype.
	HintBase
)

func (hint OverrideHint) String() string {
	switch hint {
	case HintDerived:
		return "derived"
	case HintBase:
		return "base"
	default:
		return "unknown"
	}
}

// Request is what one upgrade step works on.
type Request struct {
	Document *document.Node
	File     *AssetFile
	Files    *FileSet
	// Current is the version the document has when the step starts, Target the version it produces.
	Current int
	Target  int
	Hint    OverrideHint
}

// Upgrader upgrades a document by one step of a chain.
type Upgrader interface {
	Upgrade(ctx context.Context, l log.Logger, req *Request) error
}

// UpgraderFunc adapts a function to the Upgrader interface.
type UpgraderFunc func(ctx context.Context, l log.Logger, req *Request) error

func (fn UpgraderFunc) Upgrade(ctx context.Context, l log.Logger, req *Request) error {
	return fn(ctx, l, req)
}

// Step upgrades documents starting at version From to version To.
type Step struct {
	Upgrader Upgrader
	From     int
	To       int
}

// Chain is the ordered list of upgrade steps of one asset type.
type Chain struct {
	steps []Step
	// Current is the format version the application writes.
	Current int
	// Min is the oldest version that can still be upgraded.
	Min int
}

// NewChain returns an empty chain targeting the given version.
func NewChain(current int) *Chain {
	return &Chain{Current: current}
}

// WithMinVersion sets the minimal upgradable version.
func (chain *Chain) WithMinVersion(minVersion int) *Chain {
	chain.Min = minVersion
	return chain
}

// Register adds an upgrade step. Steps must move forward and start from distinct versions.
func (chain *Chain) Register(from, to int, upgrader Upgrader) error {
	if to <= from {
		return errors.New(InvalidUpgraderError{From: from, To: to, Reason: "target version must be greater than source version"})
	}

	if to > chain.Current {
		return errors.New(InvalidUpgraderError{From: from, To: to, Reason: "target version exceeds the current format version"})
	}

	for _, step := range chain.steps {
		if step.From == from {
			return errors.New(InvalidUpgraderError{From: from, To: to, Reason: "another step already upgrades from this version"})
		}
	}

	chain.steps = append(chain.steps, Step{From: from, To: to, Upgrader: upgrader})

	sort.Slice(chain.steps, func(i, j int) bool {
		return chain.steps[i].From < chain.steps[j].From
	})

	return nil
}

// MustRegister is Register for process start registration; it panics on invalid steps.
func (chain *Chain) MustRegister(from, to int, upgrader Upgrader) *Chain {
	if err := chain.Register(from, to, upgrader); err != nil {
		panic(err)
	}

	return chain
}

// Validate checks that every registered step starts where the previous one ends and that the
// last step lands on the current version. A chain without steps is valid.
func (chain *Chain) Validate(tag string) error {
	for i, step := range chain.steps {
		if i > 0 && step.From != chain.steps[i-1].To {
			return errors.New(VersionGapError{Tag: tag, Version: chain.steps[i-1].To, Target: chain.Current})
		}
	}

	if n := len(chain.steps); n > 0 && chain.steps[n-1].To != chain.Current {
		return errors.New(VersionGapError{Tag: tag, Version: chain.steps[n-1].To, Target: chain.Current})
	}

	return nil
}

// Steps returns the steps ordered by source version.
func (chain *Chain) Steps() []Step {
	return append([]Step(nil), chain.steps...)
}

// stepFor returns the index of the step with the greatest From not above version, -1 if none.
func (chain *Chain) stepFor(version int) int {
	found := -1

	for i, step := range chain.steps {
		if step.From > version {
			break
		}

		found = i
	}

	return found
}

// ChainLookup finds the upgrade chain of a type tag.
type ChainLookup interface {
	Chain(tag string) (*Chain, bool)
}
