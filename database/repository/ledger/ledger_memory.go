package ledgerRepo

import (
	"context"
	"sync"

	"staybook/database"
	"staybook/models"
)

type MemoryLedgerRepo struct {
	mu     sync.RWMutex
	events map[string]models.ProcessedEvent
}

func NewMemoryLedgerRepo() *MemoryLedgerRepo {
	return &MemoryLedgerRepo{events: make(map[string]models.ProcessedEvent)}
}

func (r *MemoryLedgerRepo) Get(ctx context.Context, eventID string) (*models.ProcessedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[eventID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &e, nil
}

func (r *MemoryLedgerRepo) Record(ctx context.Context, e *models.ProcessedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[e.EventID]; !exists {
		r.events[e.EventID] = *e
	}
	return nil
}

// Len returns the number of recorded events.
func (r *MemoryLedgerRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
