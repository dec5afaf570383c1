package registry

import (
	"fmt"
	"reflect"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/document"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/mitchellh/mapstructure"
)

// Header members every asset document may carry next to its typed content.
const (
	IDKey        = "Id"
	ArchetypeKey = "Archetype"
	SourceKey    = "Source"
	ItemIDsKey   = "~ItemIds"
)

var (
	headerKeys = []string{IDKey, migration.VersionKey, ArchetypeKey, SourceKey, ItemIDsKey, document.TypeKey}
	partType   = reflect.TypeOf((*asset.Part)(nil)).Elem()
)

// Header is the part of a document that does not depend on its type.
type Header struct {
	Base    *asset.Reference
	Tag     string
	Source  string
	Version int
	ID      asset.ID
}

// ReadHeader extracts the type independent members of a document.
func ReadHeader(doc *document.Node) (*Header, error) {
	tag, err := doc.TypeTag()
	if err != nil {
		return nil, err
	}

	header := &Header{Tag: tag}

	idNode, err := doc.Get(IDKey)
	if err != nil {
		return nil, errors.New(MissingMemberError{Member: IDKey})
	}

	idStr, err := idNode.AsString()
	if err != nil {
		return nil, err
	}

	if header.ID, err = asset.ParseID(idStr); err != nil {
		return nil, errors.New(err)
	}

	if header.Version, err = migration.StoredVersion(doc); err != nil {
		return nil, err
	}

	if header.Base, err = ReadArchetype(doc); err != nil {
		return nil, err
	}

	if node := doc.GetOr(SourceKey, nil); node != nil && !node.IsNull() {
		if header.Source, err = node.AsString(); err != nil {
			return nil, err
		}
	}

	return header, nil
}

// ReadArchetype returns the archetype reference of a document, nil when it has none.
func ReadArchetype(doc *document.Node) (*asset.Reference, error) {
	node := doc.GetOr(ArchetypeKey, nil)
	if node == nil || node.IsNull() {
		return nil, nil
	}

	str, err := node.AsString()
	if err != nil {
		return nil, err
	}

	ref, err := asset.ParseReference(str)
	if err != nil {
		return nil, errors.New(err)
	}

	return &ref, nil
}

// Bind builds a typed asset from a migrated document. A document whose type is not
// registered binds to asset.UnloadableContent instead of failing.
func (registry *Registry) Bind(doc *document.Node) (*asset.Asset, error) {
	header, err := ReadHeader(doc)
	if err != nil {
		return nil, err
	}

	result := &asset.Asset{
		ID:      header.ID,
		Type:    header.Tag,
		Version: header.Version,
		Base:    header.Base,
		Source:  header.Source,
	}

	if result.Meta.ItemIDs, err = readItemIDs(doc); err != nil {
		return nil, err
	}

	if err := doc.Walk(func(path string, entry document.Entry) error {
		result.Meta.SetOverride(path, entry.Override)
		return nil
	}); err != nil {
		return nil, err
	}

	body := contentMembers(doc)

	typ, ok := registry.Type(header.Tag)
	if !ok {
		result.Content = &asset.UnloadableContent{
			Tag:    header.Tag,
			Raw:    body,
			Reason: fmt.Sprintf("asset type %q is not registered", header.Tag),
		}

		return result, nil
	}

	content := typ.New()
	if err := registry.decode(body, content); err != nil {
		return nil, errors.New(BindError{Tag: header.Tag, Err: err})
	}

	result.Content = content

	return result, nil
}

func contentMembers(doc *document.Node) map[string]any {
	body, _ := doc.Interface().(map[string]any)

	for _, key := range headerKeys {
		delete(body, key)
	}

	return body
}

func readItemIDs(doc *document.Node) (map[string][]asset.ID, error) {
	table := doc.GetOr(ItemIDsKey, nil)
	if table == nil || table.IsNull() {
		return nil, nil
	}

	if table.Kind() != document.MappingKind {
		_, err := table.Get("")
		return nil, err
	}

	out := make(map[string][]asset.ID, table.Len())

	for _, entry := range table.Entries() {
		for _, item := range entry.Value.Items() {
			str, err := item.AsString()
			if err != nil {
				return nil, err
			}

			id, err := asset.ParseID(str)
			if err != nil {
				return nil, errors.New(err)
			}

			out[entry.Key] = append(out[entry.Key], id)
		}
	}

	return out, nil
}

func (registry *Registry) decode(input any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			registry.partHook,
		),
		Result: output,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

// partHook turns tagged mappings into registered parts wherever the target is an asset.Part.
func (registry *Registry) partHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != partType {
		return data, nil
	}

	members, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}

	tag, _ := members[document.TypeKey].(string)

	body := make(map[string]any, len(members))
	for key, val := range members {
		if key != document.TypeKey {
			body[key] = val
		}
	}

	factory, ok := registry.part(tag)
	if !ok {
		return &asset.UnloadablePart{
			Tag:    tag,
			Raw:    body,
			Reason: fmt.Sprintf("part type %q is not registered", tag),
		}, nil
	}

	part := factory()
	if err := registry.decode(body, part); err != nil {
		return nil, err
	}

	return part, nil
}
