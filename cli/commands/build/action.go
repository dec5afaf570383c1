package build

import (
	"context"

	"github.com/gruntwork-io/assetflow/cli/commands/common"
	"github.com/gruntwork-io/assetflow/internal/report"
	"github.com/gruntwork-io/assetflow/internal/runner"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

func Run(ctx context.Context, l log.Logger, opts *options.AssetflowOptions) error {
	env, err := common.Load(ctx, l, opts)
	if err != nil {
		return err
	}

	store := env.Store(l)

	plan, err := env.Resolve(ctx, l, store)
	if err != nil {
		return err
	}

	l.Infof("Building %d step(s), %d excluded", len(plan.Steps), len(plan.Excluded))

	outcomes, err := runner.Run(ctx, l.WithField(log.FieldKeyStage, report.StageBuild), env.Session, plan, &runner.Options{
		Store:       store,
		Report:      env.Session.Log,
		Parallelism: opts.Parallelism,
		FailFast:    opts.FailFast,
	})
	if err != nil {
		// step failures are in the report, anything else stopped the build as a whole
		if outcomes == nil || ctx.Err() != nil {
			return err
		}

		l.Debugf("Build finished with errors: %v", err)
	}

	return env.Finish(l)
}
