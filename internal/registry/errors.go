package registry

import "fmt"

// DuplicateTagError is returned when a tag is registered twice.
type DuplicateTagError struct {
	Tag string
}

func (err DuplicateTagError) Error() string {
	return fmt.Sprintf("type tag %q is already registered", err.Tag)
}

// InvalidTypeError is returned when a type is registered without a tag, chain or factory.
type InvalidTypeError struct {
	Tag string
}

func (err InvalidTypeError) Error() string {
	return fmt.Sprintf("asset type %q needs a tag, an upgrade chain and a content factory", err.Tag)
}

// MissingMemberError is returned when a document lacks a required header member.
type MissingMemberError struct {
	Member string
}

func (err MissingMemberError) Error() string {
	return fmt.Sprintf("document has no %s member", err.Member)
}

// BindError wraps a failure to decode a document into typed content.
type BindError struct {
	Err error
	Tag string
}

func (err BindError) Error() string {
	return fmt.Sprintf("binding %s: %v", err.Tag, err.Err)
}

func (err BindError) Unwrap() error {
	return err.Err
}
