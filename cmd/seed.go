package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"staybook/database"
	"staybook/database/repository"
	roomRepo "staybook/database/repository/room"
	"staybook/models"
	"staybook/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedRoomsCommand creates the seed-rooms command.
func NewSeedRoomsCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-rooms",
		Short: "Load rooms from a YAML file into the room catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := loadRoomFile(file)
			if err != nil {
				return err
			}

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
			if err := roomRepo.Seed(ctx, stores.Rooms, rooms); err != nil {
				return err
			}
			logger.Info("rooms seeded", zap.Int("count", len(rooms)), zap.String("file", file))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "rooms.yaml", "path to the room seed file")
	return cmd
}

func loadRoomFile(path string) ([]models.Room, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return roomRepo.LoadRooms(f)
}

// seedMemoryCatalog fills the in-process catalog on startup; the memory
// driver starts empty on every run.
func seedMemoryCatalog(ctx context.Context, catalog repository.RoomCatalog, path string, logger *zap.Logger) error {
	if path == "" {
		logger.Warn("memory store without ROOM_SEED_FILE, the room catalog is empty")
		return nil
	}
	rooms, err := loadRoomFile(path)
	if err != nil {
		return err
	}
	if err := roomRepo.Seed(ctx, catalog, rooms); err != nil {
		return err
	}
	logger.Info("memory room catalog seeded", zap.Int("count", len(rooms)), zap.String("file", path))
	return nil
}
