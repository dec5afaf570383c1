package asset

// UnloadableContent replaces the content of an asset whose type tag is not registered.
// Raw keeps the document values so the asset can still be written back.
type UnloadableContent struct {
	Raw    map[string]any `msgpack:"raw"`
	Tag    string         `msgpack:"tag"`
	Reason string         `msgpack:"reason"`
}

func (content *UnloadableContent) UnloadableReason() string {
	return content.Reason
}

// UnloadablePart replaces a polymorphic part whose tag is not registered.
type UnloadablePart struct {
	Raw    map[string]any `msgpack:"raw"`
	Tag    string         `msgpack:"tag"`
	Reason string         `msgpack:"reason"`
}

func (part *UnloadablePart) PartTag() string {
	return part.Tag
}

func (part *UnloadablePart) UnloadableReason() string {
	return part.Reason
}

// Tombstone marks the place of an unloadable part that was removed from a clone.
type Tombstone struct {
	Tag string `msgpack:"tag"`
}

func (tombstone *Tombstone) PartTag() string {
	return tombstone.Tag
}
