package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// MultiError collects the errors of a pass that keeps going after a failure, such as loading
// every asset of a session or running every step of a plan. The zero value and nil are empty.
type MultiError struct {
	inner *multierror.Error
}

// Error lists the collected errors, one bullet each, continuation lines indented.
func (errs *MultiError) Error() string {
	wrapped := errs.Unwrap()

	items := make([]string, 0, len(wrapped))
	for _, err := range wrapped {
		items = append(items, bullet(err.Error()))
	}

	if len(items) == 1 {
		return fmt.Sprintf("error occurred:\n\n%s\n", items[0])
	}

	return fmt.Sprintf("%d errors occurred:\n\n%s\n", len(items), strings.Join(items, "\n\n"))
}

func (errs *MultiError) Unwrap() []error {
	if errs == nil || errs.inner == nil {
		return nil
	}

	return errs.inner.WrappedErrors()
}

// ErrorOrNil returns an error interface if this Error represents
// a list of errors, or returns nil if the list of errors is empty.
func (errs *MultiError) ErrorOrNil() error {
	if errs.Len() == 0 {
		return nil
	}

	return errs
}

// Append returns a MultiError holding the errors of errs followed by appendErrs. Nil errors are skipped.
// Appending to a nil MultiError is allowed.
func (errs *MultiError) Append(appendErrs ...error) *MultiError {
	inner := new(multierror.Error)
	if errs != nil && errs.inner != nil {
		inner = errs.inner
	}

	return &MultiError{inner: multierror.Append(inner, appendErrs...)}
}

// Len returns the number of collected errors.
func (errs *MultiError) Len() int {
	if errs == nil || errs.inner == nil {
		return 0
	}

	return len(errs.inner.Errors)
}

func bullet(str string) string {
	// for output on Windows OS
	lines := strings.Split(strings.ReplaceAll(str, "\r\n", "\n"), "\n")

	for i, line := range lines {
		if i == 0 {
			lines[i] = "* " + line
		} else {
			lines[i] = "  " + line
		}
	}

	return strings.Join(lines, "\n")
}
