package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staybook/database"
	"staybook/database/repository"
	"staybook/models"
	"staybook/services/lock"
	"staybook/utils"

	"go.uber.org/zap"
)

// CheckoutService starts the hosted payment flow for a Pending booking.
type CheckoutService interface {
	Initiate(ctx context.Context, bookingID string, amount models.Money) (*models.CheckoutSession, error)
}

// Options carries the configured checkout settings.
type Options struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	// Timeout bounds a single provider call.
	Timeout time.Duration
	// LockTTL is the checkout lock lease and the deadline of one Initiate call.
	LockTTL time.Duration
	// PendingTTL is how long a booking may stay Pending. Hosted sessions are
	// closed when the booking expires.
	PendingTTL time.Duration
}

// Providers accept session expiries at most this far ahead. Longer pending
// windows leave the provider's default in place, which ends first anyway.
const maxSessionTTL = 23 * time.Hour

// sessionWindow is implemented by providers that reject sessions closing
// sooner than a minimum lifetime.
type sessionWindow interface {
	MinSessionTTL() time.Duration
}

// Initiator implements CheckoutService. It never changes a booking's status.
type Initiator struct {
	bookings  repository.BookingRepository
	checkouts repository.CheckoutRepository
	provider  Provider
	locker    lock.Locker
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func NewInitiator(
	bookings repository.BookingRepository,
	checkouts repository.CheckoutRepository,
	provider Provider,
	locker lock.Locker,
	opts Options,
	logger *zap.Logger,
) *Initiator {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = opts.Timeout + 5*time.Second
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &Initiator{
		bookings:  bookings,
		checkouts: checkouts,
		provider:  provider,
		locker:    locker,
		opts:      opts,
		logger:    logger.With(zap.String("component", "checkout"), zap.String("provider", provider.Name())),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (i *Initiator) Initiate(ctx context.Context, bookingID string, amount models.Money) (*models.CheckoutSession, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, utils.NewValidationError("bookingId is required")
	}

	ctx, cancel := context.WithTimeout(ctx, i.opts.LockTTL)
	defer cancel()

	release, err := i.locker.Acquire(ctx, lock.CheckoutKey(bookingID), i.opts.LockTTL)
	if err != nil {
		i.logger.Warn("checkout lock unavailable", zap.String("bookingId", bookingID), zap.Error(err))
		return nil, lock.AcquireError(lock.CheckoutKey(bookingID), err)
	}
	defer release()

	b, err := i.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NewNotFoundError("booking %s not found", bookingID)
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}
	if b.Status != models.BookingPending {
		return nil, utils.NewInvalidStateError("booking %s is %s; checkout requires Pending", b.ID, b.Status)
	}
	if amount != b.TotalAmount {
		return nil, utils.NewValidationError("amount %s does not match booking total %s", amount, b.TotalAmount)
	}

	existing, err := i.checkouts.LatestForBooking(ctx, b.ID)
	switch {
	case err == nil && existing.ActiveAt(i.now()):
		i.logger.Info("reusing active checkout session",
			zap.String("bookingId", b.ID),
			zap.String("sessionId", existing.SessionID),
		)
		return existing, nil
	case err != nil && !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("failed to load checkout sessions for booking %s: %w", b.ID, err)
	}

	expiresAt, err := i.sessionExpiry(b)
	if err != nil {
		return nil, err
	}

	attempt, err := i.checkouts.CountForBooking(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count checkout sessions for booking %s: %w", b.ID, err)
	}

	req := SessionRequest{
		BookingID:      b.ID,
		UserID:         b.UserID,
		Amount:         b.TotalAmount,
		Currency:       i.opts.Currency,
		Description:    fmt.Sprintf("Room %s, %s to %s", b.RoomID, models.FormatDate(b.CheckInDate), models.FormatDate(b.CheckOutDate)),
		SuccessURL:     bookingURL(i.opts.SuccessURL, b.ID),
		CancelURL:      bookingURL(i.opts.CancelURL, b.ID),
		ExpiresAt:      expiresAt,
		IdempotencyKey: fmt.Sprintf("%s:%d", b.ID, attempt),
	}

	callCtx, cancel := context.WithTimeout(ctx, i.opts.Timeout)
	defer cancel()

	started := time.Now()
	ps, err := i.provider.CreateSession(callCtx, req)
	if err != nil {
		i.logger.Warn("payment provider call failed",
			zap.String("bookingId", b.ID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, utils.NewPaymentInitiationError("payment provider timed out", err)
		}
		return nil, utils.NewPaymentInitiationError("payment provider rejected the checkout request", err)
	}

	s := &models.CheckoutSession{
		SessionID:   ps.SessionID,
		BookingID:   b.ID,
		Amount:      b.TotalAmount,
		Currency:    i.opts.Currency,
		RedirectURL: ps.RedirectURL,
		Provider:    i.provider.Name(),
		ExpiresAt:   ps.ExpiresAt,
		CreatedAt:   i.now(),
	}
	if err := i.checkouts.Create(ctx, s); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// The provider replayed a session we already stored.
			return i.checkouts.GetBySessionID(ctx, s.SessionID)
		}
		return nil, fmt.Errorf("failed to store checkout session: %w", err)
	}

	i.logger.Info("checkout session created",
		zap.String("bookingId", b.ID),
		zap.String("sessionId", s.SessionID),
		zap.Int("attempt", attempt),
	)
	return s, nil
}

// sessionExpiry returns when the hosted page must close: the moment the
// booking itself expires. It depends only on the booking, so a retried attempt
// sends the same parameters under the same idempotency key.
func (i *Initiator) sessionExpiry(b *models.Booking) (time.Time, error) {
	if i.opts.PendingTTL <= 0 || i.opts.PendingTTL > maxSessionTTL {
		return time.Time{}, nil
	}
	at := b.CreatedAt.Add(i.opts.PendingTTL)

	var minTTL time.Duration
	if w, ok := i.provider.(sessionWindow); ok {
		minTTL = w.MinSessionTTL()
	}
	if at.Before(i.now().Add(minTTL)) {
		return time.Time{}, utils.NewInvalidStateError("booking %s expires at %s, too soon to start a checkout",
			b.ID, at.Format(time.RFC3339))
	}
	return at, nil
}
