package checkoutRepo

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

type MongoCheckoutRepo struct {
	coll *mongo.Collection
}

func NewMongoCheckoutRepo(db *mongo.Database) *MongoCheckoutRepo {
	return &MongoCheckoutRepo{coll: db.Collection("checkout_sessions")}
}

func (r *MongoCheckoutRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create checkout session indexes: %w", err)
	}
	return nil
}

func (r *MongoCheckoutRepo) Create(ctx context.Context, s *models.CheckoutSession) error {
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("insert checkout session failed: %w", err)
	}
	return nil
}

func (r *MongoCheckoutRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	return r.findOne(ctx, bson.M{"session_id": sessionID}, nil)
}

func (r *MongoCheckoutRepo) LatestForBooking(ctx context.Context, bookingID string) (*models.CheckoutSession, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findOne(ctx, bson.M{"booking_id": bookingID}, opts)
}

func (r *MongoCheckoutRepo) CountForBooking(ctx context.Context, bookingID string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return 0, fmt.Errorf("error counting checkout sessions: %w", err)
	}
	return int(n), nil
}

func (r *MongoCheckoutRepo) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.CheckoutSession, error) {
	var findOpts []*options.FindOneOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	var s models.CheckoutSession
	if err := r.coll.FindOne(ctx, filter, findOpts...).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching checkout session: %w", err)
	}
	return &s, nil
}
