package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

// ProfileRepo is the memory/user-memories collection: one accumulated
// profile document per user, read by Memory Reader (GET /memories, which
// the Generator calls on the first turn of a new conversation) and
// merged and rewritten by Memory Writer after every completed turn.
type ProfileRepo struct {
	collection *mongo.Collection
}

// NewProfileRepo opens the memory/user-memories collection.
func NewProfileRepo(db *mongo.Database, cfg *config.StoreConfig) *ProfileRepo {
	return &ProfileRepo{
		collection: db.Collection(cfg.MemoryUserMemoriesColl),
	}
}

// FindByUserID loads a user's profile. It returns (nil, nil) if the user
// has no profile yet, since a first-ever message is not an error.
func (r *ProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert writes profile, replacing the prior document for the same
// userId in full. Memory Writer always merges against the current
// profile first, so a full replace carries the merge result forward
// without losing anything written by a concurrent writer between the
// read and this write save for that writer's own delta.
func (r *ProfileRepo) Upsert(ctx context.Context, profile *model.UserProfile) error {
	filter := bson.M{"_id": profile.UserID}
	_, err := r.collection.ReplaceOne(ctx, filter, profile, options.Replace().SetUpsert(true))
	return err
}
