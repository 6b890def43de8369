package checkoutRepo

import (
	"context"
	"errors"
	"fmt"

	"staybook/database"
	"staybook/models"

	"gorm.io/gorm"
)

type PostgresCheckoutRepo struct {
	db *gorm.DB
}

func NewPostgresCheckoutRepo(db *gorm.DB) *PostgresCheckoutRepo {
	return &PostgresCheckoutRepo{db: db}
}

func (r *PostgresCheckoutRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&models.CheckoutSession{})
}

func (r *PostgresCheckoutRepo) Create(ctx context.Context, s *models.CheckoutSession) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("insert checkout session failed: %w", err)
	}
	return nil
}

func (r *PostgresCheckoutRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	return r.first(r.db.WithContext(ctx).Where("session_id = ?", sessionID))
}

func (r *PostgresCheckoutRepo) LatestForBooking(ctx context.Context, bookingID string) (*models.CheckoutSession, error) {
	return r.first(r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at DESC"))
}

func (r *PostgresCheckoutRepo) CountForBooking(ctx context.Context, bookingID string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CheckoutSession{}).Where("booking_id = ?", bookingID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("error counting checkout sessions: %w", err)
	}
	return int(n), nil
}

func (r *PostgresCheckoutRepo) first(q *gorm.DB) (*models.CheckoutSession, error) {
	var s models.CheckoutSession
	if err := q.First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching checkout session: %w", err)
	}
	return &s, nil
}
