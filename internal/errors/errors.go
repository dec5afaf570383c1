// Package errors attaches stack traces to errors, aggregates the per asset errors of a pass and
// recovers from panics in command actions.
package errors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// New creates a new error with a stack trace attached. The given value can be an
// `error` (which is wrapped, keeping an existing stack trace) or any other value,
// which is formatted with `%v`. Typed errors are passed by value, e.g.
// `errors.New(CyclicDependencyError{...})`, and stay reachable through As.
func New(val any) error {
	if val == nil {
		return nil
	}

	if err, ok := val.(error); ok {
		if ContainsStackTrace(err) {
			return err
		}

		return goerrors.Wrap(err, 1)
	}

	return goerrors.Wrap(fmt.Errorf("%v", val), 1) //nolint:err113
}

// Errorf creates a new error and wraps in an Error type that contains the stack trace.
func Errorf(message string, args ...any) error {
	err := fmt.Errorf(message, args...) //nolint:err113
	return goerrors.Wrap(err, 1)
}

// ErrorStack returns the stack traces of err and of every error it aggregates.
func ErrorStack(err error) string {
	var stacks []string

	for _, err := range UnwrapErrors(err) {
		if err, ok := err.(interface{ ErrorStack() string }); ok {
			stacks = append(stacks, err.ErrorStack())
		}
	}

	return joinLines(stacks)
}

// ContainsStackTrace returns true if the given error contain the stack trace.
// Useful to avoid creating a nested stack trace.
func ContainsStackTrace(err error) bool {
	for _, err := range UnwrapErrors(err) {
		if _, ok := err.(interface{ ErrorStack() string }); ok {
			return true
		}
	}

	return false
}
