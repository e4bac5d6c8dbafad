package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

// ConversationRepo is the durable history store, partitioned by userId,
// keyed by sessionId, written by History Writer and read by History
// Reader.
type ConversationRepo struct {
	collection *mongo.Collection
}

// NewConversationRepo opens the history/conversations collection.
func NewConversationRepo(db *mongo.Database, cfg *config.StoreConfig) *ConversationRepo {
	return &ConversationRepo{
		collection: db.Collection(cfg.HistoryConversationsColl),
	}
}

// Upsert writes conv in full, replacing any prior persisted state for
// the same sessionId. History Writer always has the authoritative
// snapshot in hand (it just pulled it from the hot cache), so a full
// replace is both simpler and safer against redelivery than incremental
// $push operations.
func (r *ConversationRepo) Upsert(ctx context.Context, conv *model.Conversation) error {
	filter := bson.M{"_id": conv.SessionID}
	_, err := r.collection.ReplaceOne(ctx, filter, conv, options.Replace().SetUpsert(true))
	return err
}

// FindBySessionID loads one conversation owned by userID. Scoping the
// filter by user_id even though _id is already unique keeps a caller
// from reading another user's session by guessing its id.
func (r *ConversationRepo) FindBySessionID(ctx context.Context, userID, sessionID string) (*model.Conversation, error) {
	var conv model.Conversation
	filter := bson.M{"_id": sessionID, "user_id": userID}
	if err := r.collection.FindOne(ctx, filter).Decode(&conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListByUserID returns conversation metadata for a user, newest first,
// with the messages array excluded.
func (r *ConversationRepo) ListByUserID(ctx context.Context, userID string, limit, offset int64) ([]*model.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "last_activity", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset).
		SetProjection(bson.M{"messages": 0})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []*model.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// SetTitle renames a conversation, scoped to its owning user. Returns
// mongo.ErrNoDocuments if sessionID doesn't exist or isn't owned by
// userID, mirroring FindBySessionID's cross-partition behavior.
func (r *ConversationRepo) SetTitle(ctx context.Context, userID, sessionID, title string) error {
	filter := bson.M{"_id": sessionID, "user_id": userID}
	update := bson.M{"$set": bson.M{"title": title}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
