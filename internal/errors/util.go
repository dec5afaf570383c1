package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// IsCanceled reports whether err was caused by a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Recover tries to recover from panics, and if it succeeds, calls the given onPanic function with an error that
// explains the cause of the panic. This function should only be called from a defer statement.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, isError := rec.(error)
		if !isError {
			err = fmt.Errorf("%v", rec) //nolint:err113
		}

		onPanic(New(err))
	}
}

// UnwrapErrors flattens err: aggregated errors are expanded, and every error is followed by
// the chain it wraps.
func UnwrapErrors(err error) []error {
	if err == nil {
		return nil
	}

	var errs []error

	for pending := []error{err}; len(pending) > 0; {
		err, pending = pending[0], pending[1:]

		for err != nil {
			if multi, ok := err.(interface{ Unwrap() []error }); ok {
				pending = append(multi.Unwrap(), pending...)
				break
			}

			errs = append(errs, err)
			err = errors.Unwrap(err)
		}
	}

	return errs
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
