package roomRepo

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"staybook/models"
	"staybook/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const roomListsKey = utils.RoomCachePrefix + "lists"

// CachedRoomCatalog is a read-through Redis cache in front of another catalog.
// Cache failures fall back to the underlying catalog.
type CachedRoomCatalog struct {
	next   RoomCatalog
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRoomCatalog(next RoomCatalog, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRoomCatalog {
	return &CachedRoomCatalog{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "room_cache")),
	}
}

func roomKey(id string) string {
	return utils.RoomCachePrefix + "id:" + id
}

func (c *CachedRoomCatalog) ListRooms(ctx context.Context, minCapacity int) ([]models.Room, error) {
	field := strconv.Itoa(minCapacity)

	cached, err := c.client.HGet(ctx, roomListsKey, field).Result()
	if err == nil {
		var rooms []models.Room
		if err := json.Unmarshal([]byte(cached), &rooms); err == nil {
			return rooms, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("room list cache read failed", zap.Error(err))
	}

	rooms, err := c.next.ListRooms(ctx, minCapacity)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rooms); err == nil {
		pipe := c.client.TxPipeline()
		pipe.HSet(ctx, roomListsKey, field, data)
		pipe.Expire(ctx, roomListsKey, c.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			c.logger.Warn("room list cache write failed", zap.Error(err))
		}
	}
	return rooms, nil
}

func (c *CachedRoomCatalog) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	cached, err := c.client.Get(ctx, roomKey(id)).Result()
	if err == nil {
		var room models.Room
		if err := json.Unmarshal([]byte(cached), &room); err == nil {
			return &room, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("room cache read failed", zap.String("roomId", id), zap.Error(err))
	}

	room, err := c.next.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(room); err == nil {
		if err := c.client.Set(ctx, roomKey(id), data, c.ttl).Err(); err != nil {
			c.logger.Warn("room cache write failed", zap.String("roomId", id), zap.Error(err))
		}
	}
	return room, nil
}

func (c *CachedRoomCatalog) UpsertRoom(ctx context.Context, room *models.Room) error {
	if err := c.next.UpsertRoom(ctx, room); err != nil {
		return err
	}
	if err := c.client.Del(ctx, roomKey(room.ID), roomListsKey).Err(); err != nil {
		c.logger.Warn("room cache invalidation failed", zap.String("roomId", room.ID), zap.Error(err))
	}
	return nil
}
