package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"site-checker/app"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and monitor the configured sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			application := app.NewApplication(opts.serviceOptions(logger)...)
			if err := application.Err(); err != nil {
				return err
			}

			if err := application.Start(cmd.Context()); err != nil {
				return fmt.Errorf("failed to start application: %w", err)
			}

			<-cmd.Context().Done()
			logger.Info("received shutdown signal")

			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := application.Stop(stopCtx); err != nil {
				logger.Error("failed to stop application gracefully", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
