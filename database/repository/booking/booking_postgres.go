package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/database"
	"staybook/models"

	"gorm.io/gorm"
)

// PostgresBookingRepo implements BookingRepository with gorm.
type PostgresBookingRepo struct {
	db *gorm.DB
}

func NewPostgresBookingRepo(db *gorm.DB) *PostgresBookingRepo {
	return &PostgresBookingRepo{db: db}
}

// AutoMigrate creates or updates the bookings table.
func (r *PostgresBookingRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&models.Booking{})
}

// InsertIfAvailable serializes creators of the same room on a transaction
// scoped advisory lock, then checks for overlap and inserts.
func (r *PostgresBookingRepo) InsertIfAvailable(ctx context.Context, b *models.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", b.RoomID).Error; err != nil {
			return fmt.Errorf("room lock failed: %w", err)
		}

		var count int64
		err := tx.Model(&models.Booking{}).
			Where("room_id = ? AND status IN ? AND check_in_date < ? AND check_out_date > ?",
				b.RoomID, models.ActiveStatuses, b.CheckOutDate, b.CheckInDate).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if count > 0 {
			return database.ErrOverlap
		}

		if err := tx.Create(b).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return database.ErrDuplicate
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	})
	return err
}

func (r *PostgresBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking with id %s: %w", id, err)
	}
	return &b, nil
}

func (r *PostgresBookingRepo) ListOverlapping(ctx context.Context, checkIn, checkOut time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("status IN ? AND check_in_date < ? AND check_out_date > ?", models.ActiveStatuses, checkOut, checkIn).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching overlapping bookings: %w", err)
	}
	return bookings, nil
}

func (r *PostgresBookingRepo) CompareAndSetStatus(ctx context.Context, id string, from, to models.BookingStatus, reason string, at time.Time) (*models.Booking, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":        to,
			"cancel_reason": reason,
			"updated_at":    at,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update booking %s: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return r.GetByID(ctx, id)
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, database.ErrStatusMismatch
}

func (r *PostgresBookingRepo) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.BookingPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("error fetching pending bookings: %w", err)
	}
	return bookings, nil
}

func (r *PostgresBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings for user %s: %w", userID, err)
	}
	return bookings, nil
}
