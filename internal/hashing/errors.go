package hashing

import "fmt"

// HashPolicyError is returned when a flag combination is rejected before any work is done.
type HashPolicyError struct {
	Reason string
	Flags  Flags
}

func (err HashPolicyError) Error() string {
	return fmt.Sprintf("invalid clone policy %s: %s", err.Flags, err.Reason)
}

// UnloadableObjectError is returned when a clone meets an unloadable object and is not allowed to drop it.
type UnloadableObjectError struct {
	Tag    string
	Reason string
}

func (err UnloadableObjectError) Error() string {
	return fmt.Sprintf("object %q could not be loaded: %s", err.Tag, err.Reason)
}

// UnknownFlagError is returned for an unknown flag name.
type UnknownFlagError struct {
	Name string
}

func (err UnknownFlagError) Error() string {
	return fmt.Sprintf("unknown clone flag %q", err.Name)
}
