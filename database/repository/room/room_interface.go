package roomRepo

import (
	"context"

	"staybook/models"
)

// RoomCatalog supplies rooms and their nightly rates.
type RoomCatalog interface {
	// ListRooms returns rooms with Capacity >= minCapacity; minCapacity <= 0 lists all rooms.
	ListRooms(ctx context.Context, minCapacity int) ([]models.Room, error)
	// GetRoom returns database.ErrNotFound for unknown rooms.
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	UpsertRoom(ctx context.Context, room *models.Room) error
}
