package log

import "sort"

// Field keys shared by the loader, resolver and runner so that log lines can be grepped per asset.
const (
	FieldKeyAsset    = "asset"
	FieldKeyLocation = "location"
	FieldKeyPackage  = "package"
	FieldKeyStage    = "stage"
	FieldKeyCommand  = "command"
)

var fieldOrder = []string{
	"time",
	"level",
	FieldKeyPackage,
	FieldKeyLocation,
	FieldKeyAsset,
	FieldKeyStage,
	FieldKeyCommand,
	"msg",
}

// Fields type, used to pass to `WithFields`.
type Fields map[string]any

// sortFieldKeys puts well known keys first, in a fixed order, and the rest alphabetically.
func sortFieldKeys(keys []string) {
	rank := func(key string) int {
		for i, known := range fieldOrder {
			if known == key {
				return i
			}
		}

		return len(fieldOrder)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}

		return keys[i] < keys[j]
	})
}
