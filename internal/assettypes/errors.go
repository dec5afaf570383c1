package assettypes

import "fmt"

// MissingSourceError is returned when an asset that imports a source file has none.
type MissingSourceError struct {
	Location string
}

func (err MissingSourceError) Error() string {
	return fmt.Sprintf("asset %s has no source file", err.Location)
}

// InvalidMemberError is returned by upgraders meeting a member of an unexpected shape.
type InvalidMemberError struct {
	Err    error
	Tag    string
	Member string
}

func (err InvalidMemberError) Error() string {
	return fmt.Sprintf("invalid %s member %s: %v", err.Tag, err.Member, err.Err)
}

func (err InvalidMemberError) Unwrap() error {
	return err.Err
}
