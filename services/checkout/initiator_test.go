package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingRepo "staybook/database/repository/booking"
	checkoutRepo "staybook/database/repository/checkout"
	"staybook/models"
	"staybook/services/lock"
	"staybook/utils"
)

// scriptedProvider answers CreateSession from a queue of behaviours and
// records the requests it saw.
type scriptedProvider struct {
	mu       sync.Mutex
	requests []SessionRequest
	script   []func(ctx context.Context) error
	ttl      time.Duration
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) CreateSession(ctx context.Context, req SessionRequest) (*ProviderSession, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	var step func(context.Context) error
	if len(p.script) > 0 {
		step, p.script = p.script[0], p.script[1:]
	}
	n := len(p.requests)
	p.mu.Unlock()

	if step != nil {
		if err := step(ctx); err != nil {
			return nil, err
		}
	}
	ttl := p.ttl
	if ttl == 0 {
		ttl = time.Hour
	}
	return &ProviderSession{
		SessionID:   req.IdempotencyKey + "-session-" + string(rune('0'+n)),
		RedirectURL: "https://pay.example.test/" + req.BookingID,
		ExpiresAt:   time.Now().UTC().Add(ttl),
	}, nil
}

func hang(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type checkoutFixture struct {
	bookings  *bookingRepo.MemoryBookingRepo
	checkouts *checkoutRepo.MemoryCheckoutRepo
	provider  *scriptedProvider
	init      *Initiator
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		bookings:  bookingRepo.NewMemoryBookingRepo(),
		checkouts: checkoutRepo.NewMemoryCheckoutRepo(),
		provider:  &scriptedProvider{},
	}
	f.init = NewInitiator(f.bookings, f.checkouts, f.provider, lock.NewLocalLocker(), Options{
		SuccessURL: "https://app.example.test/bookings/{BOOKING_ID}?ok=1",
		CancelURL:  "https://app.example.test/bookings/{BOOKING_ID}?ok=0",
		Timeout:    50 * time.Millisecond,
	}, zap.NewNop())
	return f
}

func (f *checkoutFixture) addBooking(t *testing.T, id string, status models.BookingStatus) *models.Booking {
	t.Helper()
	in, _ := models.ParseDate("2024-01-10")
	out, _ := models.ParseDate("2024-01-12")
	b := &models.Booking{
		ID: id, RoomID: "r-" + id, UserID: "u-1",
		CheckInDate: in, CheckOutDate: out,
		NightlyRate: models.NewMoney(100, 0),
		TotalAmount: models.NewMoney(200, 0),
		Status:      models.BookingPending,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, f.bookings.InsertIfAvailable(context.Background(), b))
	if status != models.BookingPending {
		_, err := f.bookings.CompareAndSetStatus(context.Background(), id, models.BookingPending, status, "", time.Now().UTC())
		require.NoError(t, err)
	}
	return b
}

func TestInitiateCreatesSession(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addBooking(t, "b-1", models.BookingPending)

	s, err := f.init.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	require.NoError(t, err)
	assert.Equal(t, "b-1", s.BookingID)
	assert.Equal(t, "https://pay.example.test/b-1", s.RedirectURL)
	assert.Equal(t, "scripted", s.Provider)
	assert.Equal(t, "usd", s.Currency)

	require.Len(t, f.provider.requests, 1)
	req := f.provider.requests[0]
	assert.Equal(t, "b-1:0", req.IdempotencyKey)
	assert.Equal(t, models.NewMoney(200, 0), req.Amount)
	assert.Equal(t, "https://app.example.test/bookings/b-1?ok=1", req.SuccessURL)
	assert.Equal(t, "https://app.example.test/bookings/b-1?ok=0", req.CancelURL)

	stored, err := f.checkouts.GetBySessionID(context.Background(), s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "b-1", stored.BookingID)

	b, err := f.bookings.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
}

func TestInitiateReusesActiveSession(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addBooking(t, "b-1", models.BookingPending)

	first, err := f.init.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	require.NoError(t, err)
	second, err := f.init.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Len(t, f.provider.requests, 1)
}

func TestInitiateReplacesExpiredSession(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addBooking(t, "b-1", models.BookingPending)
	require.NoError(t, f.checkouts.Create(context.Background(), &models.CheckoutSession{
		SessionID: "cs_old", BookingID: "b-1", ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}))

	s, err := f.init.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	require.NoError(t, err)
	assert.NotEqual(t, "cs_old", s.SessionID)
	require.Len(t, f.provider.requests, 1)
	assert.Equal(t, "b-1:1", f.provider.requests[0].IdempotencyKey)
}

func TestInitiateTimeoutLeavesBookingPending(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addBooking(t, "b-1", models.BookingPending)
	f.provider.script = []func(context.Context) error{hang}

	_, err := f.init.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrPaymentInitiation)

	b, err := f.bookings.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)

	n, err := f.checkouts.CountForBooking(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	// A retry succeeds and reuses the idempotency key of the timed-out call.
	s, err := f.init.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	require.NoError(t, err)
	assert.NotEmpty(t, s.RedirectURL)
	require.Len(t, f.provider.requests, 2)
	assert.Equal(t, f.provider.requests[0].IdempotencyKey, f.provider.requests[1].IdempotencyKey)
}

func TestInitiateClosesSessionWhenBookingExpires(t *testing.T) {
	f := newCheckoutFixture(t)
	f.init.opts.PendingTTL = time.Hour
	b := f.addBooking(t, "b-1", models.BookingPending)
	f.provider.script = []func(context.Context) error{hang}

	_, err := f.init.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	require.ErrorIs(t, err, utils.ErrPaymentInitiation)
	_, err = f.init.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	require.NoError(t, err)

	require.Len(t, f.provider.requests, 2)
	want := b.CreatedAt.Add(time.Hour)
	assert.True(t, want.Equal(f.provider.requests[0].ExpiresAt), "got %s", f.provider.requests[0].ExpiresAt)
	assert.True(t, want.Equal(f.provider.requests[1].ExpiresAt), "retry must repeat the expiry")
}

type windowedProvider struct {
	*scriptedProvider
	min time.Duration
}

func (p windowedProvider) MinSessionTTL() time.Duration { return p.min }

func TestInitiateRefusesBookingAboutToExpire(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addBooking(t, "b-1", models.BookingPending)
	initiator := NewInitiator(f.bookings, f.checkouts, windowedProvider{f.provider, 31 * time.Minute}, lock.NewLocalLocker(), Options{
		Timeout:    50 * time.Millisecond,
		PendingTTL: 20 * time.Minute,
	}, zap.NewNop())

	_, err := initiator.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	assert.ErrorIs(t, err, utils.ErrInvalidState)
	assert.Empty(t, f.provider.requests)

	b, err := f.bookings.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
}

func TestInitiateGivesUpOnBusyCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addBooking(t, "b-1", models.BookingPending)
	locker := lock.NewLocalLocker()
	initiator := NewInitiator(f.bookings, f.checkouts, f.provider, locker, Options{
		Timeout: 20 * time.Millisecond,
		LockTTL: 50 * time.Millisecond,
	}, zap.NewNop())

	release, err := locker.Acquire(context.Background(), lock.CheckoutKey("b-1"), time.Second)
	require.NoError(t, err)
	defer release()

	started := time.Now()
	_, err = initiator.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	assert.ErrorIs(t, err, utils.ErrUnavailable)
	assert.Less(t, time.Since(started), time.Second)
	assert.Empty(t, f.provider.requests)
}

func TestInitiateProviderError(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addBooking(t, "b-1", models.BookingPending)
	f.provider.script = []func(context.Context) error{
		func(context.Context) error { return errors.New("card_declined") },
	}

	_, err := f.init.Initiate(context.Background(), "b-1", models.NewMoney(200, 0))
	assert.ErrorIs(t, err, utils.ErrPaymentInitiation)
}

func TestInitiateRejectsBadRequests(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addBooking(t, "b-1", models.BookingPending)
	f.addBooking(t, "b-2", models.BookingConfirmed)
	ctx := context.Background()

	_, err := f.init.Initiate(ctx, "", models.NewMoney(200, 0))
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = f.init.Initiate(ctx, "b-1", models.NewMoney(199, 99))
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = f.init.Initiate(ctx, "b-2", models.NewMoney(200, 0))
	assert.ErrorIs(t, err, utils.ErrInvalidState)

	_, err = f.init.Initiate(ctx, "missing", models.NewMoney(200, 0))
	assert.ErrorIs(t, err, utils.ErrNotFound)

	assert.Empty(t, f.provider.requests)
}

func TestLocalProvider(t *testing.T) {
	p := NewLocalProvider(30 * time.Minute)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	s, err := p.CreateSession(context.Background(), SessionRequest{
		BookingID:  "b-1",
		SuccessURL: "https://app.example.test/bookings/b-1?checkout=success",
	})
	require.NoError(t, err)
	assert.Contains(t, s.SessionID, "cs_local_")
	assert.Contains(t, s.RedirectURL, "session_id="+s.SessionID)
	assert.Contains(t, s.RedirectURL, "checkout=success")
	assert.Equal(t, fixed.Add(30*time.Minute), s.ExpiresAt)

	closes := fixed.Add(10 * time.Minute)
	s, err = p.CreateSession(context.Background(), SessionRequest{
		BookingID:  "b-1",
		SuccessURL: "https://app.example.test/bookings/b-1",
		ExpiresAt:  closes,
	})
	require.NoError(t, err)
	assert.Equal(t, closes, s.ExpiresAt)
}

func TestBookingURL(t *testing.T) {
	assert.Equal(t, "https://x.test/b/abc?s=1", bookingURL("https://x.test/b/{BOOKING_ID}?s=1", "abc"))
	assert.Equal(t, "https://x.test/done", bookingURL("https://x.test/done", "abc"))
}
