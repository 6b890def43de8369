package roomRepo

import (
	"context"
	"sort"
	"sync"

	"staybook/database"
	"staybook/models"
)

type MemoryRoomCatalog struct {
	mu    sync.RWMutex
	rooms map[string]models.Room
}

func NewMemoryRoomCatalog(rooms ...models.Room) *MemoryRoomCatalog {
	c := &MemoryRoomCatalog{rooms: make(map[string]models.Room, len(rooms))}
	for _, r := range rooms {
		c.rooms[r.ID] = r
	}
	return c
}

func (c *MemoryRoomCatalog) ListRooms(ctx context.Context, minCapacity int) ([]models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		if r.Capacity >= minCapacity {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *MemoryRoomCatalog) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.rooms[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &r, nil
}

func (c *MemoryRoomCatalog) UpsertRoom(ctx context.Context, room *models.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room.ID] = *room
	return nil
}
