package availability

import (
	"context"
	"fmt"
	"time"

	"staybook/database/repository"
	"staybook/models"
	"staybook/services/booking"
	"staybook/utils"
)

// AvailabilityService answers which rooms are free for a stay.
type AvailabilityService interface {
	FindAvailable(ctx context.Context, checkIn, checkOut time.Time, capacity *int) ([]models.Room, error)
}

// DefaultAvailabilityService is a read-only view over the catalog and the booking store.
type DefaultAvailabilityService struct {
	Rooms    repository.RoomCatalog
	Bookings repository.BookingRepository
}

func NewAvailabilityService(rooms repository.RoomCatalog, bookings repository.BookingRepository) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{Rooms: rooms, Bookings: bookings}
}

// FindAvailable returns the catalog rooms with no Pending or Confirmed booking
// overlapping [checkIn, checkOut). A nil capacity disables the capacity filter.
func (s *DefaultAvailabilityService) FindAvailable(ctx context.Context, checkIn, checkOut time.Time, capacity *int) ([]models.Room, error) {
	checkIn, checkOut, err := booking.ValidateStay(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	minCapacity := 0
	if capacity != nil {
		if *capacity < 1 {
			return nil, utils.NewValidationError("capacity must be at least 1")
		}
		minCapacity = *capacity
	}

	rooms, err := s.Rooms.ListRooms(ctx, minCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	taken, err := s.Bookings.ListOverlapping(ctx, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlapping bookings: %w", err)
	}

	occupied := make(map[string]struct{}, len(taken))
	for _, b := range taken {
		occupied[b.RoomID] = struct{}{}
	}

	available := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if _, busy := occupied[room.ID]; busy {
			continue
		}
		available = append(available, room)
	}
	return available, nil
}
