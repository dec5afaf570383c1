package compiler_test

import (
	"context"
	"testing"

	"github.com/gruntwork-io/assetflow/internal/asset"
	"github.com/gruntwork-io/assetflow/internal/compiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnv struct {
	outputs map[string][]byte
}

func (env fakeEnv) Output(url string) ([]byte, error) { return env.outputs[url], nil }
func (env fakeEnv) Source(string) ([]byte, error)     { return nil, nil }

func (env fakeEnv) OutputOf(asset.ID, string) ([]byte, error) { return nil, nil }

func TestFuncCommand(t *testing.T) {
	t.Parallel()

	item := &asset.Item{Location: "textures/stone", Asset: &asset.Asset{ID: asset.NewID()}}

	cmd := compiler.NewCommand("transcode", compiler.OutputURL(item, "gpu"), func(_ context.Context, env compiler.Environment) ([]byte, error) {
		raw, err := env.Output("textures/stone/raw")
		if err != nil {
			return nil, err
		}

		return append([]byte("gpu:"), raw...), nil
	})

	assert.Equal(t, "transcode", cmd.Name())
	assert.Equal(t, "textures/stone/gpu", cmd.OutputURL())

	out, err := cmd.Execute(context.Background(), fakeEnv{outputs: map[string][]byte{"textures/stone/raw": []byte("pixels")}})
	require.NoError(t, err)
	assert.Equal(t, "gpu:pixels", string(out))
	assert.Equal(t, "textures/stone", compiler.OutputURL(item, ""))
}
