package bookingRepo

import (
	"context"
	"time"

	"staybook/models"
)

// BookingRepository is the single source of truth for bookings.
type BookingRepository interface {
	// InsertIfAvailable inserts b unless an active booking for the same room
	// overlaps its date range, in which case database.ErrOverlap is returned.
	// The check and the insert are atomic with respect to other writers.
	InsertIfAvailable(ctx context.Context, b *models.Booking) error
	// GetByID returns database.ErrNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// ListOverlapping returns Pending and Confirmed bookings overlapping [checkIn, checkOut).
	ListOverlapping(ctx context.Context, checkIn, checkOut time.Time) ([]models.Booking, error)
	// CompareAndSetStatus moves the booking from one status to another only if
	// its stored status still equals from. It returns the updated booking,
	// database.ErrStatusMismatch or database.ErrNotFound.
	CompareAndSetStatus(ctx context.Context, id string, from, to models.BookingStatus, reason string, at time.Time) (*models.Booking, error)
	// ListPendingBefore returns up to limit Pending bookings created before cutoff, oldest first.
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error)
	// ListByUser returns the user's bookings, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
}
