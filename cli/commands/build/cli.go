// Package build implements the 'assetflow build' command, which resolves the build plan of the
// root package and runs the steps whose outputs are not in the build cache yet.
package build

import (
	"github.com/gruntwork-io/assetflow/cli/commands/plan"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "build"

	FailFastFlagName = options.SettingFailFast
)

func NewCommand(opts *options.AssetflowOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Build the assets needed by the package roots.",
		UsageText: "assetflow build [--all-roots] [--fail-fast]",
		Flags: []cli.Flag{
			plan.NewAllRootsFlag(opts),
			&cli.BoolFlag{
				Name:  FailFastFlagName,
				Usage: "Stop scheduling new steps after the first failure.",
				Action: func(_ *cli.Context, failFast bool) error {
					opts.FailFast = failFast
					return nil
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, log.LoggerFromContext(ctx.Context), opts)
		},
	}
}
