package roomRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/database"
	"staybook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRoomCatalog struct {
	coll *mongo.Collection
}

func NewMongoRoomCatalog(db *mongo.Database) *MongoRoomCatalog {
	return &MongoRoomCatalog{coll: db.Collection("rooms")}
}

func (c *MongoRoomCatalog) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "capacity", Value: 1}}},
	}
	if _, err := c.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create room indexes: %w", err)
	}
	return nil
}

func (c *MongoRoomCatalog) ListRooms(ctx context.Context, minCapacity int) ([]models.Room, error) {
	filter := bson.M{}
	if minCapacity > 0 {
		filter["capacity"] = bson.M{"$gte": minCapacity}
	}
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching rooms: %w", err)
	}
	defer cursor.Close(ctx)

	rooms := []models.Room{}
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("error decoding rooms: %w", err)
	}
	return rooms, nil
}

func (c *MongoRoomCatalog) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := c.coll.FindOne(ctx, bson.M{"id": id}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching room with id %s: %w", id, err)
	}
	return &room, nil
}

func (c *MongoRoomCatalog) UpsertRoom(ctx context.Context, room *models.Room) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := c.coll.ReplaceOne(ctx, bson.M{"id": room.ID}, room, opts); err != nil {
		return fmt.Errorf("failed to upsert room %s: %w", room.ID, err)
	}
	return nil
}
