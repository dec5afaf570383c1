// Package hash implements the 'assetflow hash' command, which prints the content hash of one asset
// under a chosen clone policy.
package hash

import (
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/urfave/cli/v2"
)

const (
	CommandName = "hash"

	FlagFlagName = "flag"
)

func NewCommand(opts *options.AssetflowOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Print the content hash of an asset.",
		UsageText: "assetflow hash <location|id> [--flag reference-as-null] [--flag ...]",
		ArgsUsage: "<location|id>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name: FlagFlagName,
				Usage: "Clone policy applied before hashing. One of reference-as-null, remove-item-ids, " +
					"remove-unloadable-objects, clear-external-references. May be repeated.",
				Action: func(_ *cli.Context, flags []string) error {
					opts.HashFlags = flags
					return nil
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return cli.Exit("expected exactly one asset location or id", 1)
			}

			return Run(ctx.Context, log.LoggerFromContext(ctx.Context), opts, ctx.Args().First())
		},
	}
}
