package hashing

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// canonical converts a value into a tree of lists and scalars whose encoding does not depend
// on map iteration order. Structs become [name, value] pairs in declaration order, values held
// in interfaces are prefixed with their dynamic type so that parts of different types never collide.
func canonical(val reflect.Value) (any, error) {
	if !val.IsValid() {
		return nil, nil
	}

	if val.Type().Implements(textMarshalerType) && (val.Kind() != reflect.Pointer || !val.IsNil()) {
		text, err := val.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, err
		}

		return string(text), nil
	}

	switch val.Kind() { //nolint:exhaustive
	case reflect.Pointer:
		if val.IsNil() {
			return nil, nil
		}

		return canonical(val.Elem())
	case reflect.Interface:
		if val.IsNil() {
			return nil, nil
		}

		inner, err := canonical(val.Elem())
		if err != nil {
			return nil, err
		}

		return []any{val.Elem().Type().String(), inner}, nil
	case reflect.Struct:
		return canonicalStruct(val)
	case reflect.Slice:
		if val.IsNil() {
			return nil, nil
		}

		fallthrough
	case reflect.Array:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			out := make([]byte, val.Len())
			for i := range out {
				out[i] = byte(val.Index(i).Uint())
			}

			return out, nil
		}

		out := make([]any, val.Len())

		for i := range val.Len() {
			elem, err := canonical(val.Index(i))
			if err != nil {
				return nil, err
			}

			out[i] = elem
		}

		return out, nil
	case reflect.Map:
		return canonicalMap(val)
	case reflect.Bool:
		return val.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return val.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return val.Float(), nil
	case reflect.String:
		return val.String(), nil
	}

	return nil, fmt.Errorf("cannot hash value of type %s", val.Type()) //nolint:err113
}

func canonicalStruct(val reflect.Value) (any, error) {
	typ := val.Type()
	out := make([]any, 0, typ.NumField()*2) //nolint:mnd

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() || skipField(field) {
			continue
		}

		elem, err := canonical(val.Field(i))
		if err != nil {
			return nil, err
		}

		out = append(out, field.Name, elem)
	}

	return out, nil
}

func skipField(field reflect.StructField) bool {
	name, _, _ := strings.Cut(field.Tag.Get("msgpack"), ",")
	return name == "-"
}

func canonicalMap(val reflect.Value) (any, error) {
	type pair struct {
		key  any
		elem any
		sort string
	}

	pairs := make([]pair, 0, val.Len())
	iter := val.MapRange()

	for iter.Next() {
		key, err := canonical(iter.Key())
		if err != nil {
			return nil, err
		}

		elem, err := canonical(iter.Value())
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, pair{key: key, elem: elem, sort: fmt.Sprintf("%v", key)})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].sort < pairs[j].sort
	})

	out := make([]any, 0, len(pairs)*2) //nolint:mnd
	for _, p := range pairs {
		out = append(out, p.key, p.elem)
	}

	return out, nil
}
