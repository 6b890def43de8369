package checkoutRepo

import (
	"context"
	"sync"

	"staybook/database"
	"staybook/models"
)

type MemoryCheckoutRepo struct {
	mu        sync.RWMutex
	sessions  map[string]models.CheckoutSession
	byBooking map[string][]string
}

func NewMemoryCheckoutRepo() *MemoryCheckoutRepo {
	return &MemoryCheckoutRepo{
		sessions:  make(map[string]models.CheckoutSession),
		byBooking: make(map[string][]string),
	}
}

func (r *MemoryCheckoutRepo) Create(ctx context.Context, s *models.CheckoutSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.SessionID]; exists {
		return database.ErrDuplicate
	}
	r.sessions[s.SessionID] = *s
	r.byBooking[s.BookingID] = append(r.byBooking[s.BookingID], s.SessionID)
	return nil
}

func (r *MemoryCheckoutRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &s, nil
}

func (r *MemoryCheckoutRepo) LatestForBooking(ctx context.Context, bookingID string) (*models.CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byBooking[bookingID]
	if len(ids) == 0 {
		return nil, database.ErrNotFound
	}
	s := r.sessions[ids[len(ids)-1]]
	return &s, nil
}

func (r *MemoryCheckoutRepo) CountForBooking(ctx context.Context, bookingID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byBooking[bookingID]), nil
}
