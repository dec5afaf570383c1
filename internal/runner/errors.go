package runner

import (
	"fmt"

	"github.com/gruntwork-io/assetflow/internal/asset"
)

// StepEarlyExitError is returned for steps that did not run because of an earlier failure.
type StepEarlyExitError struct {
	Location         string
	FailedDependency string
}

func (err StepEarlyExitError) Error() string {
	if err.FailedDependency != "" {
		return fmt.Sprintf("step %s did not run due to a failure in %s", err.Location, err.FailedDependency)
	}

	return fmt.Sprintf("step %s did not run due to an earlier failure", err.Location)
}

// CommandError wraps the error of a build command.
type CommandError struct {
	Err      error
	Location string
	Command  string
}

func (err CommandError) Error() string {
	return fmt.Sprintf("command %s of %s failed: %v", err.Command, err.Location, err.Err)
}

func (err CommandError) Unwrap() error {
	return err.Err
}

// OutputNotFoundError is returned when a command asks for an output that no predecessor published.
type OutputNotFoundError struct {
	URL      string
	Location string
}

func (err OutputNotFoundError) Error() string {
	return fmt.Sprintf("output %s requested by %s is not produced by any of its dependencies", err.URL, err.Location)
}

// UnknownDependencyError is returned when a command asks for the output of an asset its step does
// not depend on at compile time.
type UnknownDependencyError struct {
	Location string
	ID       asset.ID
}

func (err UnknownDependencyError) Error() string {
	return fmt.Sprintf("%s asks for the output of %s, which is not one of its compile dependencies", err.Location, err.ID)
}

// StalePlanError is returned when a plan is run after the session changed.
type StalePlanError struct {
	Resolved uint64
	Current  uint64
}

func (err StalePlanError) Error() string {
	return fmt.Sprintf("plan was resolved at generation %d but the session is at generation %d, resolve again", err.Resolved, err.Current)
}
