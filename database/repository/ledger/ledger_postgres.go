package ledgerRepo

import (
	"context"
	"errors"
	"fmt"

	"staybook/database"
	"staybook/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresLedgerRepo struct {
	db *gorm.DB
}

func NewPostgresLedgerRepo(db *gorm.DB) *PostgresLedgerRepo {
	return &PostgresLedgerRepo{db: db}
}

func (r *PostgresLedgerRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&models.ProcessedEvent{})
}

func (r *PostgresLedgerRepo) Get(ctx context.Context, eventID string) (*models.ProcessedEvent, error) {
	var e models.ProcessedEvent
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching processed event %s: %w", eventID, err)
	}
	return &e, nil
}

func (r *PostgresLedgerRepo) Record(ctx context.Context, e *models.ProcessedEvent) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(e).Error
	if err != nil {
		return fmt.Errorf("failed to record processed event %s: %w", e.EventID, err)
	}
	return nil
}
