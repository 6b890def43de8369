package checkoutRepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/database"
	"staybook/models"
)

func TestCheckoutSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCheckoutRepo()

	_, err := repo.LatestForBooking(ctx, "b-1")
	assert.ErrorIs(t, err, database.ErrNotFound)

	n, err := repo.CountForBooking(ctx, "b-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, &models.CheckoutSession{SessionID: "cs_1", BookingID: "b-1", ExpiresAt: now}))
	require.NoError(t, repo.Create(ctx, &models.CheckoutSession{SessionID: "cs_2", BookingID: "b-1", ExpiresAt: now.Add(time.Hour)}))
	assert.ErrorIs(t, repo.Create(ctx, &models.CheckoutSession{SessionID: "cs_2", BookingID: "b-1"}), database.ErrDuplicate)

	latest, err := repo.LatestForBooking(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "cs_2", latest.SessionID)
	assert.True(t, latest.ActiveAt(now))

	n, err = repo.CountForBooking(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.GetBySessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.False(t, got.ActiveAt(now))
}
