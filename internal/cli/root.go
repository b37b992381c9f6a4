package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"site-checker/app"
	"site-checker/internal/common"
	"site-checker/internal/report"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	configPath string
	format     string
	verbose    bool
}

// NewRootCommand builds the site-checker command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "site-checker",
		Short:         "Assess whether websites are safe to visit",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to the config file (defaults to CONFIG_PATH, then the XDG config dir)")
	flags.StringVarP(&opts.format, "format", "f", string(report.FormatText), fmt.Sprintf("output format, one of %v", report.Formats))
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newAssessCommand(opts),
		newCompareCommand(opts),
		newServeCommand(opts),
		newMCPCommand(opts),
	)
	return cmd
}

// Execute runs the root command against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	return app.NewLogger(os.Getenv("APP_ENV"), o.verbose)
}

func (o *rootOptions) serviceOptions(logger *zap.Logger) []common.Option {
	return []common.Option{
		common.WithLogger(logger),
		common.WithConfigPath(o.configPath),
		common.WithEnv(os.Getenv("APP_ENV")),
	}
}
