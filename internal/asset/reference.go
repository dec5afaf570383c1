package asset

import (
	"strings"

	"github.com/google/uuid"
)

const referenceSeparator = ":"

// Reference points at another asset by identifier. Location is informational:
// references resolve by ID.
type Reference struct {
	Location string `msgpack:"location"`
	ID       ID     `msgpack:"id"`
}

// ParseReference parses the `id:location` text form. The location part is optional.
func ParseReference(str string) (Reference, error) {
	idPart, location, _ := strings.Cut(str, referenceSeparator)

	id, err := uuid.Parse(idPart)
	if err != nil {
		return Reference{}, InvalidReferenceError{Value: str, Err: err}
	}

	return Reference{ID: id, Location: location}, nil
}

// String returns the `id:location` text form.
func (ref Reference) String() string {
	if ref.Location == "" {
		return ref.ID.String()
	}

	return ref.ID.String() + referenceSeparator + ref.Location
}

// IsZero reports whether the reference points nowhere.
func (ref Reference) IsZero() bool {
	return ref.ID == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler.
func (ref Reference) MarshalText() ([]byte, error) {
	return []byte(ref.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ref *Reference) UnmarshalText(text []byte) error {
	parsed, err := ParseReference(string(text))
	if err != nil {
		return err
	}

	*ref = parsed

	return nil
}
