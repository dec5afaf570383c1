// Package plan implements the 'assetflow plan' command, which prints the ordered build steps
// of the root package without running them.
package plan

import (
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "plan"

	AllRootsFlagName = options.SettingAllRoots
	JSONFlagName     = "json"
)

func NewCommand(opts *options.AssetflowOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Resolve the dependency graph and print the build steps in order.",
		UsageText: "assetflow plan [--all-roots] [--json]",
		Flags: []cli.Flag{
			NewAllRootsFlag(opts),
			&cli.BoolFlag{
				Name:  JSONFlagName,
				Usage: "Print the plan as JSON.",
				Action: func(_ *cli.Context, json bool) error {
					opts.JSON = json
					return nil
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, log.LoggerFromContext(ctx.Context), opts)
		},
	}
}

// NewAllRootsFlag returns the flag that makes every asset a root. The build command shares it.
func NewAllRootsFlag(opts *options.AssetflowOptions) cli.Flag {
	return &cli.BoolFlag{
		Name:  AllRootsFlagName,
		Usage: "Treat every asset as a root instead of the roots declared by the packages.",
		Action: func(_ *cli.Context, allRoots bool) error {
			opts.AllRoots = allRoots
			return nil
		},
	}
}
