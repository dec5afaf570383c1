package document

import "strings"

// Override marks how a member of a derived asset relates to the same member of its archetype.
type Override uint8

const (
	// OverrideBase means the value is inherited from the archetype.
	OverrideBase Override = 0
	// OverrideNew means the value was set on the derived asset itself.
	OverrideNew Override = 1
	// OverrideSealed means derived assets may not override the value further.
	OverrideSealed Override = 2
)

const (
	newMarker    = '*'
	sealedMarker = '!'
)

func (o Override) IsNew() bool    { return o&OverrideNew != 0 }
func (o Override) IsSealed() bool { return o&OverrideSealed != 0 }

// Without returns o with the given flags cleared.
func (o Override) Without(flags Override) Override {
	return o &^ flags
}

func (o Override) String() string {
	switch {
	case o == OverrideBase:
		return "base"
	case o.IsNew() && o.IsSealed():
		return "new|sealed"
	case o.IsNew():
		return "new"
	default:
		return "sealed"
	}
}

// suffix returns the key suffix used in text form.
func (o Override) suffix() string {
	var sb strings.Builder

	if o.IsNew() {
		sb.WriteRune(newMarker)
	}

	if o.IsSealed() {
		sb.WriteRune(sealedMarker)
	}

	return sb.String()
}

// splitKey strips the override markers off a key as written in a document.
func splitKey(raw string) (string, Override) {
	var o Override

	key := raw

	for len(key) > 1 {
		switch key[len(key)-1] {
		case newMarker:
			o |= OverrideNew
		case sealedMarker:
			o |= OverrideSealed
		default:
			return key, o
		}

		key = key[:len(key)-1]
	}

	return key, o
}
