package checkoutRepo

import (
	"context"

	"staybook/models"
)

// CheckoutRepository stores the sessionId -> bookingId mapping.
type CheckoutRepository interface {
	Create(ctx context.Context, s *models.CheckoutSession) error
	// GetBySessionID returns database.ErrNotFound for unknown sessions.
	GetBySessionID(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
	// LatestForBooking returns the most recently created session, or database.ErrNotFound.
	LatestForBooking(ctx context.Context, bookingID string) (*models.CheckoutSession, error)
	CountForBooking(ctx context.Context, bookingID string) (int, error)
}
