package ledgerRepo

import (
	"context"

	"staybook/models"
)

// LedgerRepository records which payment events were already applied.
type LedgerRepository interface {
	// Get returns database.ErrNotFound when the event was never recorded.
	Get(ctx context.Context, eventID string) (*models.ProcessedEvent, error)
	// Record stores e. Recording an event id twice keeps the first entry and is not an error.
	Record(ctx context.Context, e *models.ProcessedEvent) error
}
