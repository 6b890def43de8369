package bookingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"staybook/database"
	"staybook/models"
)

// MemoryBookingRepo keeps bookings in process memory. A single mutex makes
// the overlap check and the insert one step.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *MemoryBookingRepo) InsertIfAvailable(ctx context.Context, b *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[b.ID]; exists {
		return database.ErrDuplicate
	}
	for _, existing := range r.bookings {
		if existing.RoomID != b.RoomID || !existing.Status.HoldsRoom() {
			continue
		}
		if models.Overlaps(existing.CheckInDate, existing.CheckOutDate, b.CheckInDate, b.CheckOutDate) {
			return database.ErrOverlap
		}
	}
	r.bookings[b.ID] = *b
	return nil
}

func (r *MemoryBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &b, nil
}

func (r *MemoryBookingRepo) ListOverlapping(ctx context.Context, checkIn, checkOut time.Time) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status.HoldsRoom() && models.Overlaps(b.CheckInDate, b.CheckOutDate, checkIn, checkOut) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryBookingRepo) CompareAndSetStatus(ctx context.Context, id string, from, to models.BookingStatus, reason string, at time.Time) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if b.Status != from {
		return nil, database.ErrStatusMismatch
	}
	b.Status = to
	b.CancelReason = reason
	b.UpdatedAt = at
	r.bookings[id] = b
	return &b, nil
}

func (r *MemoryBookingRepo) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.BookingPending && b.CreatedAt.Before(cutoff) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
