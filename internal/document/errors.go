package document

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when a mapping key or a sequence index does not exist.
type NotFoundError struct {
	Key   string
	Index int
}

func (err NotFoundError) Error() string {
	if err.Key != "" {
		return fmt.Sprintf("key %q not found", err.Key)
	}

	return fmt.Sprintf("index %d out of range", err.Index)
}

// KeyExistsError is returned when a rename targets a key that already exists.
type KeyExistsError struct {
	Key string
}

func (err KeyExistsError) Error() string {
	return fmt.Sprintf("key %q already exists", err.Key)
}

// ShapeMismatchError is returned when a node is accessed as a kind it is not.
type ShapeMismatchError struct {
	Expected string
	Actual   string
}

func (err ShapeMismatchError) Error() string {
	return fmt.Sprintf("expected %s node, got %s", err.Expected, err.Actual)
}

// UntaggedNodeError is returned when a node without a type tag is asked for one.
type UntaggedNodeError struct{}

func (err UntaggedNodeError) Error() string {
	return "node has no type tag"
}

// DuplicateKeyError is returned by the decoder when a mapping repeats a key.
type DuplicateKeyError struct {
	Key  string
	Line int
}

func (err DuplicateKeyError) Error() string {
	return fmt.Sprintf("line %d: duplicate mapping key %q", err.Line, err.Key)
}

// UnsupportedValueError is returned when a Go value cannot be represented as a scalar.
type UnsupportedValueError struct {
	Value any
}

func (err UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported scalar value of type %T", err.Value)
}

func shapeMismatch(expected string, actual *Node) ShapeMismatchError {
	name := actual.kind.String()
	if actual.kind == ScalarKind {
		name = strings.ToLower(actual.scalar.String()) + " " + name
	}

	return ShapeMismatchError{Expected: expected, Actual: name}
}
