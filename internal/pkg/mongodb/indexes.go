package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
)

// EnsureIndexes creates the indexes backing the durable store: the
// history conversations collection, the memory conversations collection
// (plus its vector search index), and the user-memories collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database, cfg *config.StoreConfig) error {
	if err := ensureHistoryConversationsIndexes(ctx, db, cfg); err != nil {
		return err
	}
	if err := ensureMemoryConversationsIndexes(ctx, db, cfg); err != nil {
		return err
	}
	if err := ensureUserMemoriesIndexes(ctx, db, cfg); err != nil {
		return err
	}
	return nil
}

// ensureHistoryConversationsIndexes indexes history/conversations, which
// is partitioned by userId and read by both History Reader (by session)
// and the History Writer upsert path.
func ensureHistoryConversationsIndexes(ctx context.Context, db *mongo.Database, cfg *config.StoreConfig) error {
	coll := db.Collection(cfg.HistoryConversationsColl)
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "last_activity", Value: -1}},
			Options: options.Index().SetName("idx_user_last_activity"),
		},
	}
	return CreateIndexes(ctx, coll, indexes)
}

// ensureMemoryConversationsIndexes indexes memory/conversations, which
// carries the per-session summary documents searched by Memory Reader via a
// $vectorSearch stage over vector_embedding, scoped to one userId.
//
// Atlas/Cosmos vector search indexes are not created through the
// standard index API; this only builds the supporting scalar index used
// to pre-filter by user before the vector stage runs. The vector index
// itself (named cfg.VectorIndexName, cfg.VectorDimensions dimensions,
// cosine similarity) is expected to be provisioned out of band, the way
// the store's other search indexes are.
func ensureMemoryConversationsIndexes(ctx context.Context, db *mongo.Database, cfg *config.StoreConfig) error {
	coll := db.Collection(cfg.MemoryConversationsColl)
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_user_timestamp"),
		},
	}
	return CreateIndexes(ctx, coll, indexes)
}

// ensureUserMemoriesIndexes indexes memory/user-memories, keyed by userId,
// read by Memory Reader's profile fetch and by Memory Writer before each
// merge.
func ensureUserMemoriesIndexes(ctx context.Context, db *mongo.Database, cfg *config.StoreConfig) error {
	coll := db.Collection(cfg.MemoryUserMemoriesColl)
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "last_updated", Value: -1}},
			Options: options.Index().SetName("idx_last_updated"),
		},
	}
	return CreateIndexes(ctx, coll, indexes)
}
