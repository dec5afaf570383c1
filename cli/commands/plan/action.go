package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gruntwork-io/assetflow/cli/commands/common"
	"github.com/gruntwork-io/assetflow/internal/buildgraph"
	"github.com/gruntwork-io/assetflow/internal/errors"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
)

func Run(ctx context.Context, l log.Logger, opts *options.AssetflowOptions) error {
	env, err := common.Load(ctx, l, opts)
	if err != nil {
		return err
	}

	plan, err := env.Resolve(ctx, l, env.Store(l))
	if err != nil {
		return err
	}

	if opts.JSON {
		err = outputJSON(opts.Writer, plan)
	} else {
		err = outputText(opts.Writer, plan)
	}

	if err != nil {
		return err
	}

	return env.Finish(l)
}

func outputJSON(w io.Writer, plan *buildgraph.Plan) error {
	jsonBytes, err := json.MarshalIndent(plan.Summaries(), "", "  ")
	if err != nil {
		return errors.New(err)
	}

	if _, err := fmt.Fprintln(w, string(jsonBytes)); err != nil {
		return errors.New(err)
	}

	return nil
}

func outputText(w io.Writer, plan *buildgraph.Plan) error {
	for _, summary := range plan.Summaries() {
		if _, err := fmt.Fprintf(w, "%-8s %s/%s %s\n", summary.Status, summary.Package, summary.Location, summary.BuildKey); err != nil {
			return errors.New(err)
		}
	}

	return nil
}
