package reconciliation

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingRepo "staybook/database/repository/booking"
	checkoutRepo "staybook/database/repository/checkout"
	ledgerRepo "staybook/database/repository/ledger"
	roomRepo "staybook/database/repository/room"
	"staybook/models"
	"staybook/services/booking"
	"staybook/services/events"
	"staybook/services/lock"
	"staybook/utils"
)

const testSecret = "whsec_local_test"

type listenerFixture struct {
	listener  *Listener
	verifier  *HMACVerifier
	bookings  *booking.DefaultBookingService
	checkouts *checkoutRepo.MemoryCheckoutRepo
	ledger    *ledgerRepo.MemoryLedgerRepo
	publisher *events.MemoryPublisher
}

func newListenerFixture(t *testing.T) *listenerFixture {
	t.Helper()
	locker := lock.NewLocalLocker()
	f := &listenerFixture{
		verifier:  NewHMACVerifier(testSecret),
		checkouts: checkoutRepo.NewMemoryCheckoutRepo(),
		ledger:    ledgerRepo.NewMemoryLedgerRepo(),
		publisher: events.NewMemoryPublisher(),
	}
	rooms := roomRepo.NewMemoryRoomCatalog(models.Room{ID: "r-101", Capacity: 2, NightlyRate: models.NewMoney(100, 0)})
	f.bookings = booking.NewBookingService(bookingRepo.NewMemoryBookingRepo(), rooms, locker, f.publisher, zap.NewNop())
	f.listener = NewListener(f.verifier, f.checkouts, f.ledger, f.bookings, locker, f.publisher, zap.NewNop())
	return f
}

// pendingWithSession creates a Pending booking and a checkout session for it.
func (f *listenerFixture) pendingWithSession(t *testing.T, sessionID string) *models.Booking {
	t.Helper()
	in, _ := models.ParseDate("2024-01-10")
	out, _ := models.ParseDate("2024-01-12")
	b, err := f.bookings.CreateBooking(context.Background(), "r-101", "u-1", in, out)
	require.NoError(t, err)
	require.NoError(t, f.checkouts.Create(context.Background(), &models.CheckoutSession{
		SessionID: sessionID,
		BookingID: b.ID,
		Amount:    b.TotalAmount,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	return b
}

func (f *listenerFixture) deliver(t *testing.T, eventID, sessionID string, outcome models.PaymentOutcome) (Result, error) {
	t.Helper()
	body, err := json.Marshal(models.PaymentEvent{EventID: eventID, SessionID: sessionID, Outcome: outcome})
	require.NoError(t, err)
	return f.listener.HandleEvent(context.Background(), body, f.verifier.Sign(body))
}

func (f *listenerFixture) status(t *testing.T, id string) models.BookingStatus {
	t.Helper()
	b, err := f.bookings.GetBooking(context.Background(), id)
	require.NoError(t, err)
	return b.Status
}

func TestSucceededEventConfirmsOnce(t *testing.T) {
	f := newListenerFixture(t)
	b := f.pendingWithSession(t, "cs_1")

	res, err := f.deliver(t, "evt_1", "cs_1", models.OutcomeSucceeded)
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, res)
	assert.Equal(t, models.BookingConfirmed, f.status(t, b.ID))

	res, err = f.deliver(t, "evt_1", "cs_1", models.OutcomeSucceeded)
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, res)
	assert.Equal(t, models.BookingConfirmed, f.status(t, b.ID))

	assert.Len(t, f.publisher.OfType(utils.EventBookingConfirmed), 1)
	assert.Equal(t, 1, f.ledger.Len())
}

func TestConcurrentRedeliveryAppliesOnce(t *testing.T) {
	f := newListenerFixture(t)
	f.pendingWithSession(t, "cs_1")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []Result
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(models.PaymentEvent{EventID: "evt_1", SessionID: "cs_1", Outcome: models.OutcomeSucceeded})
			res, err := f.listener.HandleEvent(context.Background(), body, f.verifier.Sign(body))
			assert.NoError(t, err)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}()
	}
	wg.Wait()

	applied := 0
	for _, r := range results {
		if r == ResultApplied {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.Len(t, f.publisher.OfType(utils.EventBookingConfirmed), 1)
}

func TestFailedEventFailsBooking(t *testing.T) {
	f := newListenerFixture(t)
	b := f.pendingWithSession(t, "cs_1")

	res, err := f.deliver(t, "evt_1", "cs_1", models.OutcomeFailed)
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, res)
	assert.Equal(t, models.BookingFailed, f.status(t, b.ID))

	// The room is free again.
	in, _ := models.ParseDate("2024-01-10")
	out, _ := models.ParseDate("2024-01-12")
	_, err = f.bookings.CreateBooking(context.Background(), "r-101", "u-2", in, out)
	assert.NoError(t, err)
}

func TestLateSuccessAfterCancelIsReported(t *testing.T) {
	f := newListenerFixture(t)
	b := f.pendingWithSession(t, "cs_1")
	_, err := f.bookings.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)

	res, err := f.deliver(t, "evt_late", "cs_1", models.OutcomeSucceeded)
	assert.ErrorIs(t, err, utils.ErrInvalidState)
	assert.Equal(t, ResultInvalidState, res)
	assert.Equal(t, models.BookingCancelled, f.status(t, b.ID))

	alerts := f.publisher.OfType(utils.EventBookingInconsistency)
	require.Len(t, alerts, 1)
	assert.Equal(t, b.ID, alerts[0].Key)

	entry, err := f.ledger.Get(context.Background(), "evt_late")
	require.NoError(t, err)
	assert.Equal(t, models.EventResultInvalidState, entry.Result)

	res, err = f.deliver(t, "evt_late", "cs_1", models.OutcomeSucceeded)
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, res)
}

func TestAbandonedCheckoutAfterExpiryIsAcknowledged(t *testing.T) {
	f := newListenerFixture(t)
	b := f.pendingWithSession(t, "cs_1")
	f.bookings.Now = func() time.Time { return b.CreatedAt.Add(2 * time.Hour) }

	expired, err := f.bookings.ExpireBooking(context.Background(), b.ID, time.Hour)
	require.NoError(t, err)
	require.True(t, expired)

	res, err := f.deliver(t, "evt_expired", "cs_1", models.OutcomeFailed)
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, res)
	assert.Equal(t, models.BookingCancelled, f.status(t, b.ID))
	assert.Empty(t, f.publisher.OfType(utils.EventBookingInconsistency))

	entry, err := f.ledger.Get(context.Background(), "evt_expired")
	require.NoError(t, err)
	assert.Equal(t, models.EventResultIgnored, entry.Result)

	res, err = f.deliver(t, "evt_expired", "cs_1", models.OutcomeFailed)
	require.NoError(t, err)
	assert.Equal(t, ResultDuplicate, res)
}

func TestSuccessAfterExpiryIsReported(t *testing.T) {
	f := newListenerFixture(t)
	b := f.pendingWithSession(t, "cs_1")
	f.bookings.Now = func() time.Time { return b.CreatedAt.Add(2 * time.Hour) }
	_, err := f.bookings.ExpireBooking(context.Background(), b.ID, time.Hour)
	require.NoError(t, err)

	res, err := f.deliver(t, "evt_paid", "cs_1", models.OutcomeSucceeded)
	assert.ErrorIs(t, err, utils.ErrInvalidState)
	assert.Equal(t, ResultInvalidState, res)
	assert.Len(t, f.publisher.OfType(utils.EventBookingInconsistency), 1)
}

func TestConflictingOutcomesSettleOnce(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newListenerFixture(t)
		b := f.pendingWithSession(t, "cs_1")

		outcomes := map[string]models.PaymentOutcome{
			"evt_ok":   models.OutcomeSucceeded,
			"evt_fail": models.OutcomeFailed,
		}
		var (
			start   = make(chan struct{})
			wg      sync.WaitGroup
			mu      sync.Mutex
			results = map[string]Result{}
			errs    = map[string]error{}
		)
		for id, outcome := range outcomes {
			body, err := json.Marshal(models.PaymentEvent{EventID: id, SessionID: "cs_1", Outcome: outcome})
			require.NoError(t, err)
			sig := f.verifier.Sign(body)

			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				<-start
				res, err := f.listener.HandleEvent(context.Background(), body, sig)
				mu.Lock()
				defer mu.Unlock()
				results[id] = res
				errs[id] = err
			}(id)
		}
		close(start)
		wg.Wait()

		var winner, loser string
		switch {
		case results["evt_ok"] == ResultApplied:
			winner, loser = "evt_ok", "evt_fail"
		case results["evt_fail"] == ResultApplied:
			winner, loser = "evt_fail", "evt_ok"
		default:
			t.Fatalf("round %d: no outcome applied: %v %v", round, results, errs)
		}

		require.NoError(t, errs[winner])
		assert.Equal(t, ResultInvalidState, results[loser], "round %d", round)
		assert.ErrorIs(t, errs[loser], utils.ErrInvalidState)

		want := models.BookingConfirmed
		if winner == "evt_fail" {
			want = models.BookingFailed
		}
		assert.Equal(t, want, f.status(t, b.ID))

		assert.Equal(t, 2, f.ledger.Len())
		for id, result := range map[string]string{winner: models.EventResultApplied, loser: models.EventResultInvalidState} {
			entry, err := f.ledger.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, result, entry.Result)
		}
		assert.Len(t, f.publisher.OfType(utils.EventBookingInconsistency), 1)
	}
}

func TestApplyGivesUpOnBusyBooking(t *testing.T) {
	f := newListenerFixture(t)
	b := f.pendingWithSession(t, "cs_1")
	f.listener.lockTTL = 50 * time.Millisecond

	release, err := f.listener.locker.Acquire(context.Background(), lock.BookingKey(b.ID), time.Second)
	require.NoError(t, err)
	defer release()

	_, err = f.deliver(t, "evt_1", "cs_1", models.OutcomeSucceeded)
	assert.ErrorIs(t, err, utils.ErrUnavailable)
	assert.Zero(t, f.ledger.Len())

	release()
	res, err := f.deliver(t, "evt_1", "cs_1", models.OutcomeSucceeded)
	require.NoError(t, err)
	assert.Equal(t, ResultApplied, res)
}

func TestBadSignatureChangesNothing(t *testing.T) {
	f := newListenerFixture(t)
	b := f.pendingWithSession(t, "cs_1")

	body, _ := json.Marshal(models.PaymentEvent{EventID: "evt_1", SessionID: "cs_1", Outcome: models.OutcomeSucceeded})
	forged := NewHMACVerifier("wrong-secret").Sign(body)

	_, err := f.listener.HandleEvent(context.Background(), body, forged)
	assert.ErrorIs(t, err, utils.ErrWebhookVerification)

	_, err = f.listener.HandleEvent(context.Background(), body, "")
	assert.ErrorIs(t, err, utils.ErrWebhookVerification)

	assert.Equal(t, models.BookingPending, f.status(t, b.ID))
	assert.Zero(t, f.ledger.Len())
}

func TestUnknownSession(t *testing.T) {
	f := newListenerFixture(t)

	_, err := f.deliver(t, "evt_1", "cs_missing", models.OutcomeSucceeded)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.Zero(t, f.ledger.Len())
}
