package cli

import (
	"context"

	"github.com/spf13/cobra"
	"site-checker/app"
	"site-checker/internal/interfaces"
	"site-checker/internal/mcp"
)

func newMCPCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server on stdio exposing assess_site and compare_sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return app.Run(cmd.Context(), func(ctx context.Context, assessor interfaces.Assessor) error {
				return mcp.NewServer(assessor, Version, logger).Run()
			}, opts.serviceOptions(logger)...)
		},
	}
}
