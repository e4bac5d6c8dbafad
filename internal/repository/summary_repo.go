package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

// SummaryRepo is the memory/conversations collection: one summarized
// document per session, rewritten after each completed turn, searched by
// Memory Reader via a
// $vectorSearch stage over vector_embedding, written by Memory Writer.
type SummaryRepo struct {
	collection *mongo.Collection
	cfg        *config.StoreConfig
}

// NewSummaryRepo opens the memory/conversations collection.
func NewSummaryRepo(db *mongo.Database, cfg *config.StoreConfig) *SummaryRepo {
	return &SummaryRepo{
		collection: db.Collection(cfg.MemoryConversationsColl),
		cfg:        cfg,
	}
}

// Upsert writes a summary, replacing any prior summary for the same
// sessionId so redelivered completion events don't create duplicates.
func (r *SummaryRepo) Upsert(ctx context.Context, summary *model.ConversationSummary) error {
	filter := bson.M{"_id": summary.SessionID}
	_, err := r.collection.ReplaceOne(ctx, filter, summary, options.Replace().SetUpsert(true))
	return err
}

// VectorSearch runs a $vectorSearch aggregation over vector_embedding,
// pre-filtered to userID's own documents, and returns up to limit
// candidates ordered by the store's similarity score.
func (r *SummaryRepo) VectorSearch(ctx context.Context, userID string, queryVector []float64, limit int) ([]*model.SearchResult, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: r.cfg.VectorIndexName},
			{Key: "path", Value: "vector_embedding"},
			{Key: "queryVector", Value: queryVector},
			{Key: "numCandidates", Value: limit * 10},
			{Key: "limit", Value: limit},
			{Key: "filter", Value: bson.D{{Key: "user_id", Value: userID}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "summary", Value: 1},
			{Key: "themes", Value: 1},
			{Key: "persons", Value: 1},
			{Key: "places", Value: 1},
			{Key: "user_sentiment", Value: 1},
			{Key: "timestamp", Value: 1},
			{Key: "relevance_score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raw []struct {
		model.ConversationSummary `bson:",inline"`
		RelevanceScore            float64 `bson:"relevance_score"`
	}
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, err
	}

	results := make([]*model.SearchResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, &model.SearchResult{
			ConversationSummary: r.ConversationSummary,
			RelevanceScore:      r.RelevanceScore,
		})
	}
	return results, nil
}
