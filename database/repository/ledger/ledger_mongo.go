package ledgerRepo

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

type MongoLedgerRepo struct {
	coll *mongo.Collection
}

func NewMongoLedgerRepo(db *mongo.Database) *MongoLedgerRepo {
	return &MongoLedgerRepo{coll: db.Collection("processed_events")}
}

func (r *MongoLedgerRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	index := mongo.IndexModel{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := r.coll.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create processed event index: %w", err)
	}
	return nil
}

func (r *MongoLedgerRepo) Get(ctx context.Context, eventID string) (*models.ProcessedEvent, error) {
	var e models.ProcessedEvent
	if err := r.coll.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching processed event %s: %w", eventID, err)
	}
	return &e, nil
}

func (r *MongoLedgerRepo) Record(ctx context.Context, e *models.ProcessedEvent) error {
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to record processed event %s: %w", e.EventID, err)
	}
	return nil
}
