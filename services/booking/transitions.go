package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/database"
	"staybook/models"
	"staybook/services/events"
	"staybook/utils"

	"go.uber.org/zap"
)

const maxTransitionAttempts = 5

// decideFunc inspects the current booking and reports whether the transition
// should proceed, is already satisfied, or is illegal.
type decideFunc func(b *models.Booking) (proceed bool, err error)

type transition struct {
	target    models.BookingStatus
	reason    string
	eventType string
	decide    decideFunc
}

// apply reads the booking and compare-and-sets its status, re-reading after a
// concurrent change. It returns the booking as stored and whether this call
// changed it.
func (s *DefaultBookingService) apply(ctx context.Context, id string, t transition) (*models.Booking, bool, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		current, err := s.GetBooking(ctx, id)
		if err != nil {
			return nil, false, err
		}

		proceed, err := t.decide(current)
		if err != nil {
			return current, false, err
		}
		if !proceed {
			return current, false, nil
		}

		updated, err := s.Bookings.CompareAndSetStatus(ctx, id, current.Status, t.target, t.reason, s.now())
		switch {
		case err == nil:
			s.Logger.Info("booking status changed",
				zap.String("bookingId", id),
				zap.String("from", string(current.Status)),
				zap.String("to", string(t.target)),
				zap.String("reason", t.reason),
			)
			events.Emit(ctx, s.Events, s.Logger, t.eventType, id, updated.ToView())
			return updated, true, nil
		case errors.Is(err, database.ErrStatusMismatch):
			continue
		case errors.Is(err, database.ErrNotFound):
			return nil, false, utils.NewNotFoundError("booking %s not found", id)
		default:
			return nil, false, fmt.Errorf("failed to update booking %s: %w", id, err)
		}
	}
	return nil, false, fmt.Errorf("booking %s changed concurrently %d times", id, maxTransitionAttempts)
}

func (s *DefaultBookingService) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, _, err := s.apply(ctx, id, transition{
		target:    models.BookingCancelled,
		reason:    models.CancelReasonUser,
		eventType: utils.EventBookingCancelled,
		decide: func(b *models.Booking) (bool, error) {
			switch b.Status {
			case models.BookingPending, models.BookingConfirmed:
				return true, nil
			case models.BookingCancelled:
				return false, nil
			default:
				return false, utils.NewInvalidStateError("booking %s is %s and cannot be cancelled", b.ID, b.Status)
			}
		},
	})
	return b, err
}

// settle builds the transition from Pending to a payment outcome state.
func settle(target models.BookingStatus, eventType string) transition {
	return transition{
		target:    target,
		eventType: eventType,
		decide: func(b *models.Booking) (bool, error) {
			switch b.Status {
			case models.BookingPending:
				return true, nil
			case target:
				return false, nil
			default:
				return false, utils.NewInvalidStateError("booking %s is %s and cannot become %s", b.ID, b.Status, target)
			}
		},
	}
}

func (s *DefaultBookingService) MarkConfirmed(ctx context.Context, id string) (*models.Booking, error) {
	b, _, err := s.apply(ctx, id, settle(models.BookingConfirmed, utils.EventBookingConfirmed))
	return b, err
}

func (s *DefaultBookingService) MarkFailed(ctx context.Context, id string) (*models.Booking, error) {
	b, _, err := s.apply(ctx, id, settle(models.BookingFailed, utils.EventBookingFailed))
	return b, err
}

// ExpireBooking is the TTL variant of CancelBooking. Bookings that are no
// longer Pending or are still young are left alone.
func (s *DefaultBookingService) ExpireBooking(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	cutoff := s.now().Add(-ttl)
	_, changed, err := s.apply(ctx, id, transition{
		target:    models.BookingCancelled,
		reason:    models.CancelReasonExpired,
		eventType: utils.EventBookingExpired,
		decide: func(b *models.Booking) (bool, error) {
			return b.Status == models.BookingPending && !b.CreatedAt.After(cutoff), nil
		},
	})
	return changed, err
}

const sweepBatchSize = 100

func (s *DefaultBookingService) CancelExpired(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.now().Add(-ttl)
	cancelled := 0
	for {
		listCtx, cancel := s.bounded(ctx)
		batch, err := s.Bookings.ListPendingBefore(listCtx, cutoff, sweepBatchSize)
		cancel()
		if err != nil {
			return cancelled, fmt.Errorf("failed to list expired bookings: %w", err)
		}

		progressed := false
		for _, b := range batch {
			changed, err := s.ExpireBooking(ctx, b.ID, ttl)
			if err != nil {
				s.Logger.Warn("failed to expire booking", zap.String("bookingId", b.ID), zap.Error(err))
				continue
			}
			if changed {
				cancelled++
				progressed = true
			}
		}

		if len(batch) < sweepBatchSize || !progressed {
			return cancelled, nil
		}
	}
}
