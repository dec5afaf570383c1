package document

import "strconv"

// WalkFunc is called for every mapping entry. path is the dotted member path of the entry,
// with sequence indexes written as `[i]`.
type WalkFunc func(path string, entry Entry) error

// Walk visits every mapping entry of the tree depth first, in document order.
func (node *Node) Walk(fn WalkFunc) error {
	return node.walk("", fn)
}

func (node *Node) walk(prefix string, fn WalkFunc) error {
	switch node.kind {
	case MappingKind:
		for _, entry := range node.entries {
			path := JoinPath(prefix, entry.Key)

			if err := fn(path, entry); err != nil {
				return err
			}

			if err := entry.Value.walk(path, fn); err != nil {
				return err
			}
		}
	case SequenceKind:
		for i, item := range node.items {
			if err := item.walk(IndexPath(prefix, i), fn); err != nil {
				return err
			}
		}
	case ScalarKind:
	}

	return nil
}

// JoinPath appends a member name to a path.
func JoinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

// IndexPath appends a sequence index to a path.
func IndexPath(prefix string, index int) string {
	return prefix + "[" + strconv.Itoa(index) + "]"
}
