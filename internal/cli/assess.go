package cli

import (
	"context"

	"github.com/spf13/cobra"
	"site-checker/app"
	"site-checker/internal/interfaces"
	"site-checker/internal/report"
)

func newAssessCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assess <url>",
		Short: "Check a single URL and print a Safe or Unsafe assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return app.Run(cmd.Context(), func(ctx context.Context, assessor interfaces.Assessor) error {
				assessment, err := assessor.Assess(ctx, args[0])
				if err != nil {
					return err
				}
				return report.WriteAssessment(cmd.OutOrStdout(), format, assessment)
			}, opts.serviceOptions(logger)...)
		},
	}
}

func newCompareCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <first-url> <second-url>",
		Short: "Check two URLs and explain which one is safer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return app.Run(cmd.Context(), func(ctx context.Context, assessor interfaces.Assessor) error {
				comparison, err := assessor.Compare(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return report.WriteComparison(cmd.OutOrStdout(), format, comparison)
			}, opts.serviceOptions(logger)...)
		},
	}
}
