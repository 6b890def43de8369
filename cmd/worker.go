package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"staybook/config"
	"staybook/cron"
	"staybook/utils"

	"github.com/spf13/cobra"
)

// NewWorkerCommand creates the worker command.
func NewWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the asynq worker that expires unpaid bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			logger := utils.GetLogger()
			defer logger.Sync() //nolint:errcheck

			app, err := newApplication(logger)
			if err != nil {
				return err
			}
			defer app.close()

			srv, err := cron.InitExpiryWorker(app.bookings, config.AppConfig.PendingBookingTTL, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			logger.Info("expiry worker shutting down")
			srv.Shutdown()
			return nil
		},
	}
}
