package booking

import (
	"context"
	"time"

	"staybook/database/repository"
	"staybook/models"
	"staybook/services/events"
	"staybook/services/lock"
	"staybook/services/tasks"

	"go.uber.org/zap"
)

// BookingService owns every write to a booking's status.
type BookingService interface {
	CreateBooking(ctx context.Context, roomID, userID string, checkIn, checkOut time.Time) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	CancelBooking(ctx context.Context, id string) (*models.Booking, error)
	// MarkConfirmed and MarkFailed are called by payment reconciliation only.
	MarkConfirmed(ctx context.Context, id string) (*models.Booking, error)
	MarkFailed(ctx context.Context, id string) (*models.Booking, error)
	// ExpireBooking cancels id if it is still Pending and older than ttl.
	ExpireBooking(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// CancelExpired cancels every Pending booking older than ttl and returns how many it cancelled.
	CancelExpired(ctx context.Context, ttl time.Duration) (int, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings repository.BookingRepository
	Rooms    repository.RoomCatalog
	Locker   lock.Locker
	Events   events.Publisher
	// Expiry is optional; when set, every new booking gets an expiry task.
	Expiry     tasks.ExpiryScheduler
	PendingTTL time.Duration
	// LockTTL is the lock lease and also the deadline of a single operation.
	LockTTL time.Duration
	Logger  *zap.Logger
	Now     func() time.Time
}

const defaultLockTTL = 10 * time.Second

// NewBookingService wires a DefaultBookingService with a UTC clock.
func NewBookingService(
	bookings repository.BookingRepository,
	rooms repository.RoomCatalog,
	locker lock.Locker,
	publisher events.Publisher,
	logger *zap.Logger,
) *DefaultBookingService {
	return &DefaultBookingService{
		Bookings: bookings,
		Rooms:    rooms,
		Locker:   locker,
		Events:   publisher,
		LockTTL:  10 * time.Second,
		Logger:   logger.With(zap.String("component", "booking")),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// bounded derives the context of one operation so that no call waits past
// the lease of the locks it takes.
func (s *DefaultBookingService) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return context.WithTimeout(ctx, ttl)
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}
