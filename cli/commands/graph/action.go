package graph

import (
	"context"

	"github.com/gruntwork-io/assetflow/cli/commands/common"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

func Run(ctx context.Context, l log.Logger, opts *options.AssetflowOptions) error {
	env, err := common.Load(ctx, l, opts)
	if err != nil {
		return err
	}

	// the graph does not depend on what is cached
	plan, err := env.Resolve(ctx, l, nil)
	if err != nil {
		return err
	}

	return plan.WriteDot(l, opts.Writer)
}
