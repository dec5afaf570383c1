// Package document implements the order-preserving tree that asset files are parsed into
// before they are migrated and bound to typed assets.
//
// A Node is a mapping, a sequence or a scalar. Mapping keys are unique and keep their
// insertion order; every mapping entry carries an Override marker. Any node may carry a
// type tag. Nodes are only mutated through their methods.
package document

import (
	"math"
	"slices"

	"github.com/gruntwork-io/assetflow/internal/errors"
)

// TypeKey is the key under which Interface exposes the type tag of a tagged mapping.
const TypeKey = "$type"

// Kind is the shape of a node.
type Kind uint8

const (
	MappingKind Kind = iota
	SequenceKind
	ScalarKind
)

func (kind Kind) String() string {
	switch kind {
	case MappingKind:
		return "mapping"
	case SequenceKind:
		return "sequence"
	default:
		return "scalar"
	}
}

// ScalarType is the type of a scalar value.
type ScalarType uint8

const (
	NullScalar ScalarType = iota
	StringScalar
	IntScalar
	FloatScalar
	BoolScalar
)

func (typ ScalarType) String() string {
	switch typ {
	case StringScalar:
		return "String"
	case IntScalar:
		return "Int"
	case FloatScalar:
		return "Float"
	case BoolScalar:
		return "Bool"
	default:
		return "Null"
	}
}

// Entry is one key/value pair of a mapping.
type Entry struct {
	Key      string
	Value    *Node
	Override Override
}

// Node is a single element of a document tree.
type Node struct {
	value   any
	tag     string
	entries []Entry
	items   []*Node
	kind    Kind
	scalar  ScalarType
}

// NewMapping returns an empty mapping with the given type tag ("" for none).
func NewMapping(tag string) *Node {
	return &Node{kind: MappingKind, tag: tag}
}

// NewSequence returns a sequence holding the given items.
func NewSequence(items ...*Node) *Node {
	return &Node{kind: SequenceKind, items: slices.Clone(items)}
}

func NewString(val string) *Node { return &Node{kind: ScalarKind, scalar: StringScalar, value: val} }
func NewInt(val int64) *Node     { return &Node{kind: ScalarKind, scalar: IntScalar, value: val} }
func NewFloat(val float64) *Node { return &Node{kind: ScalarKind, scalar: FloatScalar, value: val} }
func NewBool(val bool) *Node     { return &Node{kind: ScalarKind, scalar: BoolScalar, value: val} }
func NewNull() *Node             { return &Node{kind: ScalarKind, scalar: NullScalar} }

// NewScalar builds a scalar from a Go value. Integer types become Int, float types Float.
func NewScalar(val any) (*Node, error) {
	switch v := val.(type) {
	case nil:
		return NewNull(), nil
	case string:
		return NewString(v), nil
	case bool:
		return NewBool(v), nil
	case int:
		return NewInt(int64(v)), nil
	case int32:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case uint32:
		return NewInt(int64(v)), nil
	case float32:
		return NewFloat(float64(v)), nil
	case float64:
		return NewFloat(v), nil
	}

	return nil, errors.New(UnsupportedValueError{Value: val})
}

// Kind returns the node kind.
func (node *Node) Kind() Kind {
	return node.kind
}

// ScalarType returns the scalar type, NullScalar for non scalars.
func (node *Node) ScalarType() ScalarType {
	if node.kind != ScalarKind {
		return NullScalar
	}

	return node.scalar
}

// Tag returns the type tag, "" when untagged.
func (node *Node) Tag() string {
	return node.tag
}

// TypeTag returns the type tag or UntaggedNodeError.
func (node *Node) TypeTag() (string, error) {
	if node.tag == "" {
		return "", errors.New(UntaggedNodeError{})
	}

	return node.tag, nil
}

// SetTag replaces the type tag.
func (node *Node) SetTag(tag string) {
	node.tag = tag
}

// Len returns the number of entries or items, 0 for scalars.
func (node *Node) Len() int {
	switch node.kind {
	case MappingKind:
		return len(node.entries)
	case SequenceKind:
		return len(node.items)
	default:
		return 0
	}
}

func (node *Node) expect(kind Kind) error {
	if node.kind != kind {
		return errors.New(shapeMismatch(kind.String(), node))
	}

	return nil
}

func (node *Node) index(key string) int {
	return slices.IndexFunc(node.entries, func(entry Entry) bool { return entry.Key == key })
}

// Keys returns the mapping keys in order.
func (node *Node) Keys() []string {
	keys := make([]string, len(node.entries))
	for i, entry := range node.entries {
		keys[i] = entry.Key
	}

	return keys
}

// Entries returns a copy of the mapping entries in order.
func (node *Node) Entries() []Entry {
	return slices.Clone(node.entries)
}

// Has reports whether the mapping contains key.
func (node *Node) Has(key string) bool {
	return node.kind == MappingKind && node.index(key) >= 0
}

// Get returns the value stored under key.
func (node *Node) Get(key string) (*Node, error) {
	if err := node.expect(MappingKind); err != nil {
		return nil, err
	}

	i := node.index(key)
	if i < 0 {
		return nil, errors.New(NotFoundError{Key: key})
	}

	return node.entries[i].Value, nil
}

// GetOr returns the value stored under key, or def when the key is missing or node is not a mapping.
func (node *Node) GetOr(key string, def *Node) *Node {
	if val, err := node.Get(key); err == nil {
		return val
	}

	return def
}

// Set stores value under key. An existing key keeps its position and override marker.
func (node *Node) Set(key string, value *Node) error {
	if err := node.expect(MappingKind); err != nil {
		return err
	}

	if i := node.index(key); i >= 0 {
		node.entries[i].Value = value
		return nil
	}

	node.entries = append(node.entries, Entry{Key: key, Value: value})

	return nil
}

// SetEntry stores value under key with an explicit override marker.
func (node *Node) SetEntry(key string, value *Node, override Override) error {
	if err := node.Set(key, value); err != nil {
		return err
	}

	node.entries[node.index(key)].Override = override

	return nil
}

// Remove deletes key and returns the removed value.
func (node *Node) Remove(key string) (*Node, error) {
	if err := node.expect(MappingKind); err != nil {
		return nil, err
	}

	i := node.index(key)
	if i < 0 {
		return nil, errors.New(NotFoundError{Key: key})
	}

	removed := node.entries[i].Value
	node.entries = slices.Delete(node.entries, i, i+1)

	return removed, nil
}

// Rename changes a key in place. Position and override marker are kept.
func (node *Node) Rename(oldKey, newKey string) error {
	if err := node.expect(MappingKind); err != nil {
		return err
	}

	i := node.index(oldKey)
	if i < 0 {
		return errors.New(NotFoundError{Key: oldKey})
	}

	if oldKey == newKey {
		return nil
	}

	if node.index(newKey) >= 0 {
		return errors.New(KeyExistsError{Key: newKey})
	}

	node.entries[i].Key = newKey

	return nil
}

// Override returns the marker of key.
func (node *Node) Override(key string) (Override, error) {
	if err := node.expect(MappingKind); err != nil {
		return OverrideBase, err
	}

	i := node.index(key)
	if i < 0 {
		return OverrideBase, errors.New(NotFoundError{Key: key})
	}

	return node.entries[i].Override, nil
}

// SetOverride replaces the marker of key.
func (node *Node) SetOverride(key string, override Override) error {
	if err := node.expect(MappingKind); err != nil {
		return err
	}

	i := node.index(key)
	if i < 0 {
		return errors.New(NotFoundError{Key: key})
	}

	node.entries[i].Override = override

	return nil
}

// Items returns a copy of the sequence items.
func (node *Node) Items() []*Node {
	return slices.Clone(node.items)
}

// Item returns the sequence item at index.
func (node *Node) Item(index int) (*Node, error) {
	if err := node.expect(SequenceKind); err != nil {
		return nil, err
	}

	if index < 0 || index >= len(node.items) {
		return nil, errors.New(NotFoundError{Index: index})
	}

	return node.items[index], nil
}

// Append adds an item at the end of the sequence.
func (node *Node) Append(item *Node) error {
	if err := node.expect(SequenceKind); err != nil {
		return err
	}

	node.items = append(node.items, item)

	return nil
}

// Insert places item at index; index may equal the length to append.
func (node *Node) Insert(index int, item *Node) error {
	if err := node.expect(SequenceKind); err != nil {
		return err
	}

	if index < 0 || index > len(node.items) {
		return errors.New(NotFoundError{Index: index})
	}

	node.items = slices.Insert(node.items, index, item)

	return nil
}

// RemoveAt deletes the item at index and returns it.
func (node *Node) RemoveAt(index int) (*Node, error) {
	if err := node.expect(SequenceKind); err != nil {
		return nil, err
	}

	if index < 0 || index >= len(node.items) {
		return nil, errors.New(NotFoundError{Index: index})
	}

	removed := node.items[index]
	node.items = slices.Delete(node.items, index, index+1)

	return removed, nil
}

func (node *Node) expectScalar(typ ScalarType) error {
	if node.kind != ScalarKind || node.scalar != typ {
		return errors.New(shapeMismatch(typ.String()+" scalar", node))
	}

	return nil
}

// AsString returns the value of a String scalar.
func (node *Node) AsString() (string, error) {
	if err := node.expectScalar(StringScalar); err != nil {
		return "", err
	}

	return node.value.(string), nil
}

// AsInt returns the value of an Int scalar.
func (node *Node) AsInt() (int64, error) {
	if err := node.expectScalar(IntScalar); err != nil {
		return 0, err
	}

	return node.value.(int64), nil
}

// AsFloat returns the value of a Float scalar. Int scalars are widened.
func (node *Node) AsFloat() (float64, error) {
	if node.kind == ScalarKind && node.scalar == IntScalar {
		return float64(node.value.(int64)), nil
	}

	if err := node.expectScalar(FloatScalar); err != nil {
		return 0, err
	}

	return node.value.(float64), nil
}

// AsBool returns the value of a Bool scalar.
func (node *Node) AsBool() (bool, error) {
	if err := node.expectScalar(BoolScalar); err != nil {
		return false, err
	}

	return node.value.(bool), nil
}

// IsNull reports whether node is the null scalar.
func (node *Node) IsNull() bool {
	return node.kind == ScalarKind && node.scalar == NullScalar
}

// Value returns the Go value of a scalar: string, int64, float64, bool or nil.
func (node *Node) Value() (any, error) {
	if err := node.expect(ScalarKind); err != nil {
		return nil, err
	}

	return node.value, nil
}

// SetValue replaces the value of a scalar node.
func (node *Node) SetValue(val any) error {
	if err := node.expect(ScalarKind); err != nil {
		return err
	}

	scalar, err := NewScalar(val)
	if err != nil {
		return err
	}

	node.scalar, node.value = scalar.scalar, scalar.value

	return nil
}

// Clone returns a deep copy of the node.
func (node *Node) Clone() *Node {
	if node == nil {
		return nil
	}

	clone := &Node{
		kind:   node.kind,
		tag:    node.tag,
		scalar: node.scalar,
		value:  node.value,
	}

	if node.entries != nil {
		clone.entries = make([]Entry, len(node.entries))
		for i, entry := range node.entries {
			clone.entries[i] = Entry{Key: entry.Key, Value: entry.Value.Clone(), Override: entry.Override}
		}
	}

	if node.items != nil {
		clone.items = make([]*Node, len(node.items))
		for i, item := range node.items {
			clone.items[i] = item.Clone()
		}
	}

	return clone
}

// Equal reports whether both trees have the same shape, tags, order, markers and values.
func (node *Node) Equal(other *Node) bool {
	if node == nil || other == nil {
		return node == other
	}

	if node.kind != other.kind || node.tag != other.tag {
		return false
	}

	switch node.kind {
	case MappingKind:
		return slices.EqualFunc(node.entries, other.entries, func(a, b Entry) bool {
			return a.Key == b.Key && a.Override == b.Override && a.Value.Equal(b.Value)
		})
	case SequenceKind:
		return slices.EqualFunc(node.items, other.items, (*Node).Equal)
	default:
		if node.scalar != other.scalar {
			return false
		}

		if node.scalar == FloatScalar && math.IsNaN(node.value.(float64)) {
			return math.IsNaN(other.value.(float64))
		}

		return node.value == other.value
	}
}

// Interface converts the tree into plain Go values: map[string]any, []any and scalars.
// The tag of a tagged mapping is stored under TypeKey.
func (node *Node) Interface() any {
	switch node.kind {
	case MappingKind:
		out := make(map[string]any, len(node.entries)+1)
		for _, entry := range node.entries {
			out[entry.Key] = entry.Value.Interface()
		}

		if node.tag != "" {
			out[TypeKey] = node.tag
		}

		return out
	case SequenceKind:
		out := make([]any, len(node.items))
		for i, item := range node.items {
			out[i] = item.Interface()
		}

		return out
	default:
		return node.value
	}
}
