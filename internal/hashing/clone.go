// Package hashing clones assets under a policy and computes stable content hashes from the clones.
package hashing

import (
	"reflect"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/huandu/go-clone"
)

var (
	referenceType        = reflect.TypeOf(asset.Reference{})
	referencePtrType     = reflect.TypeOf(&asset.Reference{})
	identifiableType     = reflect.TypeOf((*asset.Identifiable)(nil)).Elem()
	unloadableType       = reflect.TypeOf((*asset.Unloadable)(nil)).Elem()
	unloadableContentPtr = reflect.TypeOf(&asset.UnloadableContent{})
)

// Clone deep copies the asset and applies the policy selected by flags to the copy.
// The source asset is never modified.
func Clone(src *asset.Asset, flags Flags, opts ...Option) (*asset.Asset, error) {
	cfg := newConfig(opts)

	if err := validate(flags, cfg); err != nil {
		return nil, err
	}

	dst, ok := clone.Slowly(src).(*asset.Asset)
	if !ok {
		return nil, errors.Errorf("unexpected clone result for asset %s", src.ID)
	}

	if err := applyPolicy(dst, flags, cfg); err != nil {
		return nil, err
	}

	return dst, nil
}

func validate(flags Flags, cfg *config) error {
	if flags&^allFlags != 0 {
		return errors.New(HashPolicyError{Flags: flags, Reason: "unknown flag bits"})
	}

	if flags.Has(ClearExternalReferences) && !flags.Has(ReferenceAsNull) && cfg.isExternal == nil {
		return errors.New(HashPolicyError{Flags: flags, Reason: "clearing external references requires an external reference resolver"})
	}

	return nil
}

func applyPolicy(dst *asset.Asset, flags Flags, cfg *config) error {
	w := &policyWalker{flags: flags, cfg: cfg, visited: make(map[visitKey]bool)}

	if dst.Base != nil && w.dropReference(*dst.Base) {
		dst.Base = nil
	}

	if flags.Has(GenerateNewIdsForIdentifiableObjects) {
		dst.ID = cfg.newID()
	}

	if flags.Has(RemoveItemIds) {
		dst.Meta.ItemIDs = nil
	}

	if content, ok := dst.Content.(*asset.UnloadableContent); ok {
		if !flags.Has(RemoveUnloadableObjects) {
			return errors.New(UnloadableObjectError{Tag: content.Tag, Reason: content.Reason})
		}

		dst.Content = &asset.Tombstone{Tag: content.Tag}

		return nil
	}

	if dst.Content == nil {
		return nil
	}

	holder := reflect.New(reflect.TypeOf((*any)(nil)).Elem()).Elem()
	holder.Set(reflect.ValueOf(dst.Content))

	if err := w.walk(holder); err != nil {
		return err
	}

	dst.Content = holder.Interface()

	return nil
}

// policyWalker visits every value reachable from the asset content and rewrites it in place.
type policyWalker struct {
	flags   Flags
	cfg     *config
	visited map[visitKey]bool
}

type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

func (w *policyWalker) dropReference(ref asset.Reference) bool {
	if w.flags.Has(ReferenceAsNull) {
		return true
	}

	return w.flags.Has(ClearExternalReferences) && w.cfg.isExternal != nil && w.cfg.isExternal(ref)
}

func (w *policyWalker) identify(ptr reflect.Value) {
	if !w.flags.Has(GenerateNewIdsForIdentifiableObjects) || !ptr.Type().Implements(identifiableType) {
		return
	}

	ptr.Interface().(asset.Identifiable).SetIdentifier(w.cfg.newID())
}

func (w *policyWalker) walk(val reflect.Value) error {
	switch val.Kind() { //nolint:exhaustive
	case reflect.Pointer:
		if val.IsNil() {
			return nil
		}

		if val.Type() == referencePtrType {
			if w.dropReference(*val.Interface().(*asset.Reference)) {
				val.Set(reflect.Zero(val.Type()))
			}

			return nil
		}

		key := visitKey{typ: val.Type(), ptr: val.Pointer()}
		if w.visited[key] {
			return nil
		}

		w.visited[key] = true

		if val.Elem().Kind() != reflect.Struct {
			w.identify(val)
		}

		return w.walk(val.Elem())
	case reflect.Interface:
		if val.IsNil() {
			return nil
		}

		return w.walkInterface(val)
	case reflect.Struct:
		if val.Type() == referenceType {
			if w.dropReference(val.Interface().(asset.Reference)) {
				val.Set(reflect.Zero(referenceType))
			}

			return nil
		}

		if val.CanAddr() {
			w.identify(val.Addr())
		}

		for i := range val.NumField() {
			if field := val.Field(i); field.CanSet() {
				if err := w.walk(field); err != nil {
					return err
				}
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range val.Len() {
			if err := w.walk(val.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := val.MapRange()
		for iter.Next() {
			elem := reflect.New(val.Type().Elem()).Elem()
			elem.Set(iter.Value())

			if err := w.walk(elem); err != nil {
				return err
			}

			val.SetMapIndex(iter.Key(), elem)
		}
	}

	return nil
}

func (w *policyWalker) walkInterface(val reflect.Value) error {
	inner := val.Elem()

	if inner.Type().Implements(unloadableType) && inner.Type() != unloadableContentPtr {
		return w.replaceUnloadable(val, inner)
	}

	if inner.Type() == referencePtrType {
		if w.dropReference(*inner.Interface().(*asset.Reference)) {
			val.Set(reflect.Zero(val.Type()))
		}

		return nil
	}

	if inner.Kind() == reflect.Pointer {
		return w.walk(inner)
	}

	// values stored in interfaces are not addressable: walk a copy and store it back
	elem := reflect.New(inner.Type()).Elem()
	elem.Set(inner)

	if err := w.walk(elem); err != nil {
		return err
	}

	val.Set(elem)

	return nil
}

func (w *policyWalker) replaceUnloadable(val, inner reflect.Value) error {
	unloadable := inner.Interface().(asset.Unloadable)

	tag := ""
	if part, ok := inner.Interface().(asset.Part); ok {
		tag = part.PartTag()
	}

	if !w.flags.Has(RemoveUnloadableObjects) {
		return errors.New(UnloadableObjectError{Tag: tag, Reason: unloadable.UnloadableReason()})
	}

	tombstone := reflect.ValueOf(&asset.Tombstone{Tag: tag})
	if !tombstone.Type().AssignableTo(val.Type()) {
		val.Set(reflect.Zero(val.Type()))
		return nil
	}

	val.Set(tombstone)

	return nil
}
