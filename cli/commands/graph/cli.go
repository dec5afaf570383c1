// Package graph implements the 'assetflow graph' command, which prints the asset dependency graph
// in GraphViz dot format.
package graph

import (
	"github.com/gruntwork-io/assetflow/cli/commands/plan"
	"github.com/gruntwork-io/assetflow/options"
	"github.com/gruntwork-io/assetflow/pkg/log"
	"github.com/urfave/cli/v2"
)

const CommandName = "graph"

func NewCommand(opts *options.AssetflowOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Print the asset dependency graph in GraphViz dot format.",
		UsageText: "assetflow graph [--all-roots] | dot -Tsvg > graph.svg",
		Flags:     []cli.Flag{plan.NewAllRootsFlag(opts)},
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, log.LoggerFromContext(ctx.Context), opts)
		},
	}
}
