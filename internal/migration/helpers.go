package migration

import (
	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
)

// RenameMember renames a member for an upgrader. Derived and unknown documents keep the
// override marker of the member; a base document drops the New marker since it overrides nothing.
func RenameMember(doc *document.Node, oldKey, newKey string, hint OverrideHint) error {
	if err := doc.Rename(oldKey, newKey); err != nil {
		return err
	}

	if hint != HintBase {
		return nil
	}

	override, err := doc.Override(newKey)
	if err != nil {
		return err
	}

	return doc.SetOverride(newKey, override.Without(document.OverrideNew))
}

// RemoveMember removes a member if present and returns it, nil when it was missing.
func RemoveMember(doc *document.Node, key string) (*document.Node, error) {
	removed, err := doc.Remove(key)
	if err == nil {
		return removed, nil
	}

	var notFound document.NotFoundError
	if errors.As(err, &notFound) {
		return nil, nil
	}

	return nil, err
}

// MoveMembers removes the given members from doc and stores the present ones into dst,
// keeping their order and override markers.
func MoveMembers(doc, dst *document.Node, keys ...string) error {
	for _, key := range keys {
		if !doc.Has(key) {
			continue
		}

		override, err := doc.Override(key)
		if err != nil {
			return err
		}

		value, err := doc.Remove(key)
		if err != nil {
			return err
		}

		if err := dst.SetEntry(key, value, override); err != nil {
			return err
		}
	}

	return nil
}
