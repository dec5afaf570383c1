package migrate

import (
	"context"
	"fmt"

	"github.com/gruntwork-io/assetflow/cli/commands/common"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

func Run(ctx context.Context, l log.Logger, opts *options.AssetflowOptions) error {
	env, err := common.Load(ctx, l, opts)
	if err != nil {
		return err
	}

	pending := env.Session.Pending()

	if opts.Write {
		if err := env.Session.Save(l); err != nil {
			return err
		}

		l.Infof("Saved %d migrated document(s)", len(pending))
	} else {
		for _, path := range pending {
			if _, err := fmt.Fprintln(opts.Writer, path); err != nil {
				return errors.New(err)
			}
		}

		if len(pending) > 0 {
			l.Infof("%d document(s) need migration, run with --%s to save them", len(pending), WriteFlagName)
		}
	}

	return env.Finish(l)
}
