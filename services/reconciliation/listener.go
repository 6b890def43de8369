package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/database"
	"staybook/database/repository"
	"staybook/models"
	"staybook/services/booking"
	"staybook/services/events"
	"staybook/services/lock"
	"staybook/utils"

	"go.uber.org/zap"
)

// Result describes how a verified notification was handled.
type Result string

const (
	ResultApplied      Result = "applied"
	ResultDuplicate    Result = "duplicate"
	ResultIgnored      Result = "ignored"
	ResultInvalidState Result = "invalid_state"
)

// Listener applies asynchronous payment outcomes to bookings.
type Listener struct {
	verifier  Verifier
	checkouts repository.CheckoutRepository
	ledger    repository.LedgerRepository
	bookings  booking.BookingService
	locker    lock.Locker
	events    events.Publisher
	logger    *zap.Logger
	lockTTL   time.Duration
	now       func() time.Time
}

func NewListener(
	verifier Verifier,
	checkouts repository.CheckoutRepository,
	ledger repository.LedgerRepository,
	bookings booking.BookingService,
	locker lock.Locker,
	publisher events.Publisher,
	logger *zap.Logger,
) *Listener {
	return &Listener{
		verifier:  verifier,
		checkouts: checkouts,
		ledger:    ledger,
		bookings:  bookings,
		locker:    locker,
		events:    publisher,
		logger:    logger.With(zap.String("component", "reconciliation")),
		lockTTL:   15 * time.Second,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleEvent verifies and applies one provider notification. Redelivery of
// an already applied event is a no-op. The ledger entry is written only after
// the booking transition succeeded.
func (l *Listener) HandleEvent(ctx context.Context, payload []byte, signature string) (Result, error) {
	evt, err := l.verifier.Verify(payload, signature)
	if err != nil {
		l.logger.Warn("webhook verification failed", zap.Error(err))
		return "", utils.NewWebhookVerificationError("webhook signature verification failed", err)
	}
	if evt == nil {
		return ResultIgnored, nil
	}
	return l.Apply(ctx, evt)
}

// Apply reconciles an already verified event. It gives up once the booking
// lock lease would have run out.
func (l *Listener) Apply(ctx context.Context, evt *models.PaymentEvent) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, l.lockTTL)
	defer cancel()

	log := l.logger.With(
		zap.String("eventId", evt.EventID),
		zap.String("sessionId", evt.SessionID),
		zap.String("outcome", string(evt.Outcome)),
	)

	if processed, err := l.processed(ctx, evt.EventID); err != nil {
		return "", err
	} else if processed {
		log.Info("duplicate payment event")
		return ResultDuplicate, nil
	}

	session, err := l.checkouts.GetBySessionID(ctx, evt.SessionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			log.Warn("payment event for unknown checkout session")
			return "", utils.NewNotFoundError("checkout session %s not found", evt.SessionID)
		}
		return "", fmt.Errorf("failed to resolve checkout session %s: %w", evt.SessionID, err)
	}
	log = log.With(zap.String("bookingId", session.BookingID))

	release, err := l.locker.Acquire(ctx, lock.BookingKey(session.BookingID), l.lockTTL)
	if err != nil {
		log.Warn("booking lock unavailable", zap.Error(err))
		return "", lock.AcquireError(lock.BookingKey(session.BookingID), err)
	}
	defer release()

	// A concurrent delivery of the same event may have finished while we waited.
	if processed, err := l.processed(ctx, evt.EventID); err != nil {
		return "", err
	} else if processed {
		log.Info("duplicate payment event")
		return ResultDuplicate, nil
	}

	var b *models.Booking
	switch evt.Outcome {
	case models.OutcomeSucceeded:
		b, err = l.bookings.MarkConfirmed(ctx, session.BookingID)
	case models.OutcomeFailed:
		b, err = l.bookings.MarkFailed(ctx, session.BookingID)
	default:
		return "", utils.NewValidationError("unknown payment outcome %q", evt.Outcome)
	}

	if err != nil {
		if errors.Is(err, utils.ErrInvalidState) && abandonedAfterExpiry(evt, b) {
			// No money moved and the booking is already released.
			if err := l.record(ctx, evt, session.BookingID, models.EventResultIgnored); err != nil {
				return "", err
			}
			log.Info("payment failure for expired booking acknowledged")
			return ResultIgnored, nil
		}
		if errors.Is(err, utils.ErrInvalidState) {
			l.reportInconsistency(ctx, log, evt, session, b, err)
			return ResultInvalidState, err
		}
		return "", err
	}

	if err := l.record(ctx, evt, session.BookingID, models.EventResultApplied); err != nil {
		return "", err
	}
	log.Info("payment event applied", zap.String("status", string(b.Status)))
	return ResultApplied, nil
}

// abandonedAfterExpiry reports a failed or expired checkout for a booking the
// pending sweep already cancelled.
func abandonedAfterExpiry(evt *models.PaymentEvent, b *models.Booking) bool {
	return evt.Outcome == models.OutcomeFailed && b != nil &&
		b.Status == models.BookingCancelled && b.CancelReason == models.CancelReasonExpired
}

func (l *Listener) processed(ctx context.Context, eventID string) (bool, error) {
	_, err := l.ledger.Get(ctx, eventID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, database.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to read idempotency ledger: %w", err)
	}
}

func (l *Listener) record(ctx context.Context, evt *models.PaymentEvent, bookingID, result string) error {
	err := l.ledger.Record(ctx, &models.ProcessedEvent{
		EventID:     evt.EventID,
		BookingID:   bookingID,
		Outcome:     string(evt.Outcome),
		Result:      result,
		ProcessedAt: l.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to record payment event %s: %w", evt.EventID, err)
	}
	return nil
}

// inconsistencyReport is published for operators when a payment outcome
// contradicts the booking's terminal state.
type inconsistencyReport struct {
	EventID       string                `json:"eventId"`
	SessionID     string                `json:"sessionId"`
	BookingID     string                `json:"bookingId"`
	Outcome       models.PaymentOutcome `json:"outcome"`
	BookingStatus models.BookingStatus  `json:"bookingStatus,omitempty"`
	Error         string                `json:"error"`
}

func (l *Listener) reportInconsistency(ctx context.Context, log *zap.Logger, evt *models.PaymentEvent, session *models.CheckoutSession, b *models.Booking, cause error) {
	report := inconsistencyReport{
		EventID:   evt.EventID,
		SessionID: evt.SessionID,
		BookingID: session.BookingID,
		Outcome:   evt.Outcome,
		Error:     cause.Error(),
	}
	if b != nil {
		report.BookingStatus = b.Status
	}

	log.Error("payment outcome contradicts booking state",
		zap.String("bookingStatus", string(report.BookingStatus)),
		zap.Error(cause),
	)
	events.Emit(ctx, l.events, log, utils.EventBookingInconsistency, session.BookingID, report)

	// Redelivery cannot resolve the divergence, so the event is closed out.
	if err := l.record(ctx, evt, session.BookingID, models.EventResultInvalidState); err != nil {
		log.Error("failed to record inconsistent payment event", zap.Error(err))
	}
}
