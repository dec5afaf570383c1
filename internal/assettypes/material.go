package assettypes

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/gruntwork-io/assetflow/internal/migration"
	"github.com/gruntwork-io/assetflow/internal/registry"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

const (
	MaterialTag     = "Material"
	MaterialVersion = 2
)

// Material describes how a surface is shaded.
type Material struct {
	// Diffuse is the texture compiled into the material.
	Diffuse *asset.Reference
	Layers  []*MaterialLayer
	// Specular is the specular intensity, in [0, 1].
	Specular float64
}

// MaterialLayer blends another material over this one.
type MaterialLayer struct {
	Material *asset.Reference
	Weight   float64
}

func materialType() registry.AssetType {
	chain := migration.NewChain(MaterialVersion).
		WithMinVersion(1).
		MustRegister(1, 2, migration.UpgraderFunc(func(_ context.Context, _ log.Logger, req *migration.Request) error {
			if !req.Document.Has("DiffuseMap") {
				return nil
			}

			return migration.RenameMember(req.Document, "DiffuseMap", "Diffuse", req.Hint)
		}))

	return registry.AssetType{
		Tag:      MaterialTag,
		Chain:    chain,
		Compiler: materialCompiler{},
		New:      func() any { return &Material{Specular: 0.5} },
	}
}

type materialCompiler struct{}

// EnumerateDependencies returns the diffuse texture, compiled first, and the layer materials,
// whose content affects the build without being compiled for it.
func (materialCompiler) EnumerateDependencies(item *asset.Item) ([]asset.Dependency, error) {
	material := item.Asset.Content.(*Material)

	deps := refDependencies(asset.CompileContent, material.Diffuse)

	layers := make([]*asset.Reference, 0, len(material.Layers))
	for _, layer := range material.Layers {
		if layer != nil {
			layers = append(layers, layer.Material)
		}
	}

	return append(deps, refDependencies(asset.CompileAsset, layers...)...), nil
}

func (materialCompiler) Prepare(_ context.Context, item *asset.Item) ([]compiler.Command, error) {
	material := item.Asset.Content.(*Material)

	return []compiler.Command{
		compiler.NewCommand("generate", compiler.OutputURL(item, ""), func(_ context.Context, env compiler.Environment) ([]byte, error) {
			var buf bytes.Buffer

			fmt.Fprintf(&buf, "material specular=%g layers=%d\n", material.Specular, len(material.Layers))

			if material.Diffuse != nil && !material.Diffuse.IsZero() {
				diffuse, err := env.OutputOf(material.Diffuse.ID, "")
				if err != nil {
					return nil, err
				}

				fmt.Fprintf(&buf, "diffuse %s %d\n", material.Diffuse.ID, len(diffuse))
			}

			for _, layer := range material.Layers {
				if layer == nil || layer.Material == nil {
					continue
				}

				fmt.Fprintf(&buf, "layer %s %g\n", layer.Material.ID, layer.Weight)
			}

			return buf.Bytes(), nil
		}),
	}, nil
}
