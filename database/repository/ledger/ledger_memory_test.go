package ledgerRepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/database"
	"staybook/models"
)

func TestLedgerRecordKeepsFirstEntry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLedgerRepo()

	_, err := repo.Get(ctx, "evt_1")
	assert.ErrorIs(t, err, database.ErrNotFound)

	first := &models.ProcessedEvent{EventID: "evt_1", BookingID: "b-1", Outcome: "succeeded", Result: models.EventResultApplied, ProcessedAt: time.Now()}
	require.NoError(t, repo.Record(ctx, first))

	replay := &models.ProcessedEvent{EventID: "evt_1", BookingID: "b-1", Outcome: "failed", Result: models.EventResultInvalidState, ProcessedAt: time.Now()}
	require.NoError(t, repo.Record(ctx, replay))

	got, err := repo.Get(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, models.EventResultApplied, got.Result)
	assert.Equal(t, "succeeded", got.Outcome)
	assert.Equal(t, 1, repo.Len())
}
