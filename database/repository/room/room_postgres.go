package roomRepo

import (
	"context"
	"errors"
	"fmt"

	"staybook/database"
	"staybook/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRoomCatalog struct {
	db *gorm.DB
}

func NewPostgresRoomCatalog(db *gorm.DB) *PostgresRoomCatalog {
	return &PostgresRoomCatalog{db: db}
}

func (c *PostgresRoomCatalog) AutoMigrate() error {
	return c.db.AutoMigrate(&models.Room{})
}

func (c *PostgresRoomCatalog) ListRooms(ctx context.Context, minCapacity int) ([]models.Room, error) {
	q := c.db.WithContext(ctx).Order("id ASC")
	if minCapacity > 0 {
		q = q.Where("capacity >= ?", minCapacity)
	}
	rooms := []models.Room{}
	if err := q.Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("error fetching rooms: %w", err)
	}
	return rooms, nil
}

func (c *PostgresRoomCatalog) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching room with id %s: %w", id, err)
	}
	return &room, nil
}

func (c *PostgresRoomCatalog) UpsertRoom(ctx context.Context, room *models.Room) error {
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"hotel_id", "name", "capacity", "nightly_rate"}),
		}).
		Create(room).Error
	if err != nil {
		return fmt.Errorf("failed to upsert room %s: %w", room.ID, err)
	}
	return nil
}
