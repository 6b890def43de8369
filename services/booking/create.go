package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staybook/database"
	"staybook/models"
	"staybook/services/events"
	"staybook/services/lock"
	"staybook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidateStay checks the requested date range and returns it truncated to
// UTC midnight.
func ValidateStay(checkIn, checkOut time.Time) (time.Time, time.Time, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return time.Time{}, time.Time{}, utils.NewValidationError("checkInDate and checkOutDate are required")
	}
	checkIn = models.TruncateDate(checkIn)
	checkOut = models.TruncateDate(checkOut)
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, utils.NewValidationError("checkOutDate %s must be after checkInDate %s",
			models.FormatDate(checkOut), models.FormatDate(checkIn))
	}
	return checkIn, checkOut, nil
}

func (s *DefaultBookingService) CreateBooking(ctx context.Context, roomID, userID string, checkIn, checkOut time.Time) (*models.Booking, error) {
	roomID = strings.TrimSpace(roomID)
	userID = strings.TrimSpace(userID)
	if roomID == "" || userID == "" {
		return nil, utils.NewValidationError("roomId and userId are required")
	}
	checkIn, checkOut, err := ValidateStay(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	room, err := s.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("room %s not found", roomID)
		}
		return nil, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}

	nights := models.Nights(checkIn, checkOut)
	now := s.now()
	b := &models.Booking{
		ID:           uuid.New().String(),
		RoomID:       room.ID,
		UserID:       userID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		NightlyRate:  room.NightlyRate,
		TotalAmount:  room.NightlyRate * models.Money(nights),
		Status:       models.BookingPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	release, err := s.Locker.Acquire(ctx, lock.RoomKey(room.ID), s.LockTTL)
	if err != nil {
		s.Logger.Warn("room lock unavailable", zap.String("roomId", room.ID), zap.Error(err))
		return nil, lock.AcquireError(lock.RoomKey(room.ID), err)
	}
	defer release()

	if err := s.Bookings.InsertIfAvailable(ctx, b); err != nil {
		if errors.Is(err, database.ErrOverlap) {
			s.Logger.Info("booking conflict",
				zap.String("roomId", room.ID),
				zap.String("checkIn", models.FormatDate(checkIn)),
				zap.String("checkOut", models.FormatDate(checkOut)),
			)
			return nil, utils.NewConflictError("room %s is not available from %s to %s",
				room.ID, models.FormatDate(checkIn), models.FormatDate(checkOut))
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.Logger.Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("roomId", b.RoomID),
		zap.String("userId", b.UserID),
		zap.Int("nights", nights),
		zap.String("totalAmount", b.TotalAmount.String()),
	)
	events.Emit(ctx, s.Events, s.Logger, utils.EventBookingCreated, b.ID, b.ToView())
	s.scheduleExpiry(ctx, b)

	return b, nil
}

func (s *DefaultBookingService) scheduleExpiry(ctx context.Context, b *models.Booking) {
	if s.Expiry == nil || s.PendingTTL <= 0 {
		return
	}
	at := b.CreatedAt.Add(s.PendingTTL)
	if err := s.Expiry.ScheduleExpiry(ctx, b.ID, at); err != nil {
		// The periodic sweep still covers this booking.
		s.Logger.Warn("failed to schedule booking expiry", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("booking %s not found", id)
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", id, err)
	}
	return b, nil
}

func (s *DefaultBookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, utils.NewValidationError("userId is required")
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	bookings, err := s.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for user %s: %w", userID, err)
	}
	return bookings, nil
}
