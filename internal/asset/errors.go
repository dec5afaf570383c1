package asset

import "fmt"

// InvalidIDError is returned when an identifier cannot be parsed.
type InvalidIDError struct {
	Err   error
	Value string
}

func (err InvalidIDError) Error() string {
	return fmt.Sprintf("invalid asset id %q: %v", err.Value, err.Err)
}

func (err InvalidIDError) Unwrap() error {
	return err.Err
}

// InvalidReferenceError is returned when a reference does not have the `id:location` form.
type InvalidReferenceError struct {
	Err   error
	Value string
}

func (err InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid asset reference %q: %v", err.Value, err.Err)
}

func (err InvalidReferenceError) Unwrap() error {
	return err.Err
}
