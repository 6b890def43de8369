package cmd

import (
	"context"
	"time"

	"staybook/config"
	"staybook/database"
	"staybook/database/repository"
	"staybook/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create indexes (mongo) or tables (postgres) for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.GetLogger()
			stores, err := repository.OpenStores(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			defer database.Close(ctx)
			if err := stores.Migrate(ctx); err != nil {
				return err
			}
			logger.Info("store migrated", zap.String("driver", config.AppConfig.StoreDriver))
			return nil
		},
	}
}
