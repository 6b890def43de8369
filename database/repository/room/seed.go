package roomRepo

import (
	"context"
	"fmt"
	"io"

	"staybook/models"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by LoadRooms:
//
//	rooms:
//	  - id: r-101
//	    hotelId: h-1
//	    name: Deluxe King
//	    capacity: 2
//	    nightlyRate: "100.00"
type SeedFile struct {
	Rooms []models.Room `yaml:"rooms"`
}

// LoadRooms decodes and validates a room seed file.
func LoadRooms(r io.Reader) ([]models.Room, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse room seed file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Rooms))
	for i, room := range f.Rooms {
		switch {
		case room.ID == "":
			return nil, fmt.Errorf("room #%d: id is required", i+1)
		case room.Capacity < 1:
			return nil, fmt.Errorf("room %s: capacity must be at least 1", room.ID)
		case room.NightlyRate <= 0:
			return nil, fmt.Errorf("room %s: nightlyRate must be positive", room.ID)
		}
		if _, dup := seen[room.ID]; dup {
			return nil, fmt.Errorf("room %s: duplicate id", room.ID)
		}
		seen[room.ID] = struct{}{}
	}
	return f.Rooms, nil
}

// Seed upserts rooms into catalog.
func Seed(ctx context.Context, catalog RoomCatalog, rooms []models.Room) error {
	for i := range rooms {
		if err := catalog.UpsertRoom(ctx, &rooms[i]); err != nil {
			return err
		}
	}
	return nil
}
