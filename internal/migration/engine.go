// Package migration upgrades asset documents from the version they were written with to the
// current format version of their type, one registered step at a time.
package migration

import (
	"context"
	"strconv"

	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

// VersionKey is the document member holding the format version. A missing member means version 0.
const VersionKey = "SerializedVersion"

// Result describes the outcome of one migration.
type Result struct {
	// Document is the migrated document. It is the input document itself when nothing ran.
	Document *document.Node
	Tag      string
	From     int
	To       int
	Steps    int
}

// Migrated reports whether at least one step ran.
func (result *Result) Migrated() bool {
	return result.Steps > 0
}

// Engine migrates documents using the chains found through a ChainLookup.
type Engine struct {
	chains ChainLookup
}

// NewEngine returns an engine backed by the given chains.
func NewEngine(chains ChainLookup) *Engine {
	return &Engine{chains: chains}
}

// Migrate brings doc to the current version of its type. The input document is never modified:
// steps run against a clone which is only returned when every step succeeded.
func (engine *Engine) Migrate(ctx context.Context, l log.Logger, doc *document.Node, file *AssetFile, files *FileSet, hint OverrideHint) (*Result, error) {
	tag, err := doc.TypeTag()
	if err != nil {
		return nil, err
	}

	chain, ok := engine.chains.Chain(tag)
	if !ok {
		return nil, errors.New(NoUpgraderChainError{Tag: tag})
	}

	stored, err := StoredVersion(doc)
	if err != nil {
		return nil, errors.New(InvalidVersionError{Tag: tag, Err: err})
	}

	target := chain.Current
	result := &Result{Document: doc, Tag: tag, From: stored, To: stored}

	switch {
	case stored > target:
		return nil, errors.New(VersionTooNewError{Tag: tag, Version: stored, Current: target})
	case stored == target:
		return result, nil
	case stored < chain.Min:
		return nil, errors.New(VersionTooOldError{Tag: tag, Version: stored, Min: chain.Min})
	}

	working := doc.Clone()
	effective := stored
	last := -1

	for effective < target {
		if err := ctx.Err(); err != nil {
			return nil, errors.New(err)
		}

		i := chain.stepFor(effective)
		if i < 0 || i <= last || chain.steps[i].To <= effective || chain.steps[i].To > target ||
			(last >= 0 && chain.steps[i].From != effective) {
			return nil, errors.New(VersionGapError{Tag: tag, Version: effective, Target: target})
		}

		step := chain.steps[i]

		l.Debugf("Upgrading %s from version %d to %d", tag, effective, step.To)

		req := &Request{
			Document: working,
			File:     file,
			Files:    files,
			Current:  effective,
			Target:   step.To,
			Hint:     hint,
		}

		if err := step.Upgrader.Upgrade(ctx, l, req); err != nil {
			return nil, errors.New(StepFailedError{Tag: tag, From: effective, To: step.To, Err: err})
		}

		effective = step.To
		last = i

		if err := SetStoredVersion(working, effective); err != nil {
			return nil, err
		}

		result.Steps++
	}

	result.Document = working
	result.To = effective

	return result, nil
}

// StoredVersion reads the version member of a document.
func StoredVersion(doc *document.Node) (int, error) {
	node, err := doc.Get(VersionKey)
	if err != nil {
		var notFound document.NotFoundError
		if errors.As(err, &notFound) {
			return 0, nil
		}

		return 0, err
	}

	var version int64

	switch node.ScalarType() {
	case document.IntScalar:
		version, _ = node.AsInt()
	case document.StringScalar:
		str, _ := node.AsString()

		version, err = strconv.ParseInt(str, 10, 0)
		if err != nil {
			return 0, errors.New(err)
		}
	default:
		_, err := node.AsInt()
		return 0, err
	}

	if version < 0 {
		return 0, errors.Errorf("negative version %d", version)
	}

	return int(version), nil
}

// SetStoredVersion writes the version member, keeping its position when present.
func SetStoredVersion(doc *document.Node, version int) error {
	return doc.Set(VersionKey, document.NewInt(int64(version)))
}
