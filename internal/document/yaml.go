package document

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/gruntwork-io/assetflow/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	yamlIndent = 2

	tagStr   = "!!str"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagBool  = "!!bool"
	tagNull  = "!!null"
	tagMap   = "!!map"
	tagSeq   = "!!seq"
)

// Decode parses a single YAML document. Empty input decodes to an empty untagged mapping.
func Decode(data []byte) (*Node, error) {
	var root yaml.Node

	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.New(err)
	}

	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return NewMapping(""), nil
	}

	return fromYAML(&root)
}

// Encode renders the tree as YAML text. Output is deterministic for a given tree.
func Encode(node *Node) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)

	if err := enc.Encode(toYAML(node)); err != nil {
		return nil, errors.New(err)
	}

	if err := enc.Close(); err != nil {
		return nil, errors.New(err)
	}

	return buf.Bytes(), nil
}

func fromYAML(src *yaml.Node) (*Node, error) {
	switch src.Kind {
	case yaml.DocumentNode:
		return fromYAML(src.Content[0])
	case yaml.AliasNode:
		return fromYAML(src.Alias)
	case yaml.MappingNode:
		node := NewMapping(customTag(src.Tag))

		for i := 0; i+1 < len(src.Content); i += 2 {
			keyNode, valNode := src.Content[i], src.Content[i+1]

			key, override := splitKey(keyNode.Value)
			if node.Has(key) {
				return nil, errors.New(DuplicateKeyError{Key: key, Line: keyNode.Line})
			}

			val, err := fromYAML(valNode)
			if err != nil {
				return nil, err
			}

			node.entries = append(node.entries, Entry{Key: key, Value: val, Override: override})
		}

		return node, nil
	case yaml.SequenceNode:
		node := NewSequence()
		node.tag = customTag(src.Tag)

		for _, item := range src.Content {
			val, err := fromYAML(item)
			if err != nil {
				return nil, err
			}

			node.items = append(node.items, val)
		}

		return node, nil
	default:
		// a bare tag is an empty tagged mapping, e.g. a part without members
		if tag := customTag(src.Tag); tag != "" && src.Value == "" && src.Style == 0 {
			return NewMapping(tag), nil
		}

		node, err := scalarFromYAML(src)
		if err != nil {
			return nil, err
		}

		node.tag = customTag(src.Tag)

		return node, nil
	}
}

func scalarFromYAML(src *yaml.Node) (*Node, error) {
	switch src.ShortTag() {
	case tagNull:
		return NewNull(), nil
	case tagBool:
		var val bool
		if err := src.Decode(&val); err != nil {
			return nil, errors.New(err)
		}

		return NewBool(val), nil
	case tagInt:
		var val int64
		if err := src.Decode(&val); err != nil {
			return nil, errors.New(err)
		}

		return NewInt(val), nil
	case tagFloat:
		var val float64
		if err := src.Decode(&val); err != nil {
			return nil, errors.New(err)
		}

		return NewFloat(val), nil
	default:
		return NewString(src.Value), nil
	}
}

// customTag returns the application tag without its leading "!", ignoring the core YAML tags.
func customTag(tag string) string {
	if tag == "" || strings.HasPrefix(tag, "!!") || strings.HasPrefix(tag, "tag:yaml.org,2002:") {
		return ""
	}

	return strings.TrimPrefix(tag, "!")
}

func toYAML(node *Node) *yaml.Node {
	out := &yaml.Node{}

	if node.tag != "" {
		out.Tag = "!" + node.tag
	}

	switch node.kind {
	case MappingKind:
		out.Kind = yaml.MappingNode
		if out.Tag == "" {
			out.Tag = tagMap
		}

		for _, entry := range node.entries {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: entry.Key + entry.Override.suffix()}
			out.Content = append(out.Content, key, toYAML(entry.Value))
		}

		if len(node.entries) == 0 {
			out.Style = yaml.FlowStyle
		}
	case SequenceKind:
		out.Kind = yaml.SequenceNode
		if out.Tag == "" {
			out.Tag = tagSeq
		}

		for _, item := range node.items {
			out.Content = append(out.Content, toYAML(item))
		}

		if len(node.items) == 0 {
			out.Style = yaml.FlowStyle
		}
	default:
		out.Kind = yaml.ScalarNode

		tag, value := scalarToYAML(node)
		if out.Tag == "" {
			out.Tag = tag
		}

		out.Value = value
	}

	return out
}

func scalarToYAML(node *Node) (string, string) {
	switch node.scalar {
	case StringScalar:
		return tagStr, node.value.(string)
	case IntScalar:
		return tagInt, strconv.FormatInt(node.value.(int64), 10)
	case FloatScalar:
		return tagFloat, formatFloat(node.value.(float64))
	case BoolScalar:
		return tagBool, strconv.FormatBool(node.value.(bool))
	default:
		return tagNull, "null"
	}
}

func formatFloat(val float64) string {
	switch {
	case math.IsNaN(val):
		return ".nan"
	case math.IsInf(val, 1):
		return ".inf"
	case math.IsInf(val, -1):
		return "-.inf"
	}

	str := strconv.FormatFloat(val, 'g', -1, 64)
	if !strings.ContainsAny(str, ".eEn") {
		str += ".0"
	}

	return str
}
