package buildgraph

import (
	"bytes"
	"sort"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/internal/hashing"
	"github.com/vmihailenco/msgpack/v5"
)

// buildKeyFormat is mixed into every build key so that changing the layout invalidates cached builds.
const buildKeyFormat = 2

// inputPartKind sorts source file parts after the dependency kinds.
const inputPartKind = uint8(asset.Runtime) + 1

type keyPart struct {
	Target   string `msgpack:"target"`
	Location string `msgpack:"location,omitempty"`
	Hash     []byte `msgpack:"hash,omitempty"`
	Kind     uint8  `msgpack:"kind"`
}

// buildKey combines the own hash of an asset with what its dependencies contribute:
// runtime deps their id and location, CompileAsset deps their own hash and
// CompileContent deps their build key. Source files contribute the digest of their content.
func buildKey(tag string, own hashing.ObjectID, parts []keyPart) (hashing.ObjectID, error) {
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Kind != parts[j].Kind {
			return parts[i].Kind < parts[j].Kind
		}

		return parts[i].Target < parts[j].Target
	})

	var buf bytes.Buffer

	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)

	if err := enc.Encode([]any{buildKeyFormat, tag, own[:], parts}); err != nil {
		return hashing.ObjectID{}, errors.New(err)
	}

	return hashing.Sum(buf.Bytes()), nil
}

func runtimePart(ref asset.Reference) keyPart {
	return keyPart{Kind: uint8(asset.Runtime), Target: ref.ID.String(), Location: ref.Location}
}

func hashPart(kind asset.DependencyKind, target asset.ID, hash hashing.ObjectID) keyPart {
	return keyPart{Kind: uint8(kind), Target: target.String(), Hash: hash[:]}
}

func inputPart(path string, data []byte) keyPart {
	hash := hashing.Sum(data)
	return keyPart{Kind: inputPartKind, Target: path, Hash: hash[:]}
}
