package migration

import "fmt"

// NoUpgraderChainError is returned for a type tag without a registered chain.
type NoUpgraderChainError struct {
	Tag string
}

func (err NoUpgraderChainError) Error() string {
	return fmt.Sprintf("no upgrader chain registered for type %q", err.Tag)
}

// VersionTooNewError is returned when a document was written by a newer format.
type VersionTooNewError struct {
	Tag     string
	Version int
	Current int
}

func (err VersionTooNewError) Error() string {
	return fmt.Sprintf("%s version %d is newer than the supported version %d", err.Tag, err.Version, err.Current)
}

// VersionTooOldError is returned when a document is older than the minimal upgradable version.
type VersionTooOldError struct {
	Tag     string
	Version int
	Min     int
}

func (err VersionTooOldError) Error() string {
	return fmt.Sprintf("%s version %d is older than the minimal upgradable version %d", err.Tag, err.Version, err.Min)
}

// VersionGapError is returned when the chain cannot reach the target version exactly.
type VersionGapError struct {
	Tag     string
	Version int
	Target  int
}

func (err VersionGapError) Error() string {
	return fmt.Sprintf("%s has no upgrade path from version %d to %d", err.Tag, err.Version, err.Target)
}

// InvalidUpgraderError is returned when a step is registered with an invalid range.
type InvalidUpgraderError struct {
	Reason string
	From   int
	To     int
}

func (err InvalidUpgraderError) Error() string {
	return fmt.Sprintf("invalid upgrader %d -> %d: %s", err.From, err.To, err.Reason)
}

// StepFailedError wraps an error returned by an upgrader.
type StepFailedError struct {
	Err  error
	Tag  string
	From int
	To   int
}

func (err StepFailedError) Error() string {
	return fmt.Sprintf("upgrading %s from version %d to %d: %v", err.Tag, err.From, err.To, err.Err)
}

func (err StepFailedError) Unwrap() error {
	return err.Err
}

// InvalidVersionError is returned when the stored version is not a non-negative integer.
type InvalidVersionError struct {
	Err error
	Tag string
}

func (err InvalidVersionError) Error() string {
	return fmt.Sprintf("%s has an invalid %s: %v", err.Tag, VersionKey, err.Err)
}

func (err InvalidVersionError) Unwrap() error {
	return err.Err
}

// FileNotFoundError is returned when an upgrader refers to a file outside the load pass.
type FileNotFoundError struct {
	Path string
}

func (err FileNotFoundError) Error() string {
	return fmt.Sprintf("file %s is not part of the load", err.Path)
}
