// Package migrate implements the 'assetflow migrate' command, which upgrades every asset document
// of the root package and its dependencies to the current version of its type.
package migrate

import (
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "migrate"

	WriteFlagName = "write"
)

func NewCommand(opts *options.AssetflowOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Upgrade asset documents to the current version of their type.",
		UsageText: "assetflow migrate [--write]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  WriteFlagName,
				Usage: "Save the migrated documents. Without it the command only reports what would change.",
				Action: func(_ *cli.Context, write bool) error {
					opts.Write = write
					return nil
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, log.LoggerFromContext(ctx.Context), opts)
		},
	}
}
