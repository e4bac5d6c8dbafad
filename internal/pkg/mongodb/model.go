package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Model is implemented by every collection-backed type that manages its
// own indexes.
type Model interface {
	// Collection returns the collection name.
	Collection() string

	// EnsureIndexes creates and maintains the collection's indexes.
	EnsureIndexes(ctx context.Context, db *mongo.Database) error
}

// EnsureAllIndexes runs EnsureIndexes for every model, used once at
// component startup.
func EnsureAllIndexes(ctx context.Context, db *mongo.Database, models ...Model) error {
	for _, m := range models {
		if err := m.EnsureIndexes(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes creates a batch of indexes on coll.
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// CreateIndex creates a single index on coll.
func CreateIndex(ctx context.Context, coll *mongo.Collection, index mongo.IndexModel) error {
	_, err := coll.Indexes().CreateOne(ctx, index)
	return err
}
