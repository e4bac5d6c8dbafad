// Package memoryreader implements the read/delete HTTP surface over a
// user's accumulated profile and semantic search over their prior
// conversations, spec.md §4.7.
package memoryreader

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/apperr"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/llm"
	"github.com/tkubica12/scalable-ai-chat/internal/repository"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

// Service exposes Memory Reader's three operations.
type Service struct {
	profiles  *repository.ProfileRepo
	summaries *repository.SummaryRepo
	embedder  embedding.Embedder
}

// New builds the Memory Reader service.
func New(profiles *repository.ProfileRepo, summaries *repository.SummaryRepo, embedder embedding.Embedder) *Service {
	return &Service{profiles: profiles, summaries: summaries, embedder: embedder}
}

// GetProfile returns userID's accumulated profile, apperr.NotFound if
// none exists yet.
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to load profile", err)
	}
	if profile == nil {
		return nil, apperr.New(apperr.NotFound, "no profile recorded for user")
	}
	return profile, nil
}

// DeleteProfile clears userID's profile, implementing the
// right-to-be-forgotten operation over learned memory: it upserts an
// empty profile, so every learned field is emptied while the document
// itself is kept.
func (s *Service) DeleteProfile(ctx context.Context, userID string) error {
	empty := &model.UserProfile{UserID: userID}
	if err := s.profiles.Upsert(ctx, empty); err != nil {
		return apperr.Wrap(apperr.Upstream, "failed to clear profile", err)
	}
	return nil
}

// Search runs semantic search over userID's prior conversation
// summaries, embedding the query text and delegating ranking to the
// store's native $vectorSearch similarity score.
func (s *Service) Search(ctx context.Context, userID, query string, limit int) ([]model.SearchResult, error) {
	if query == "" {
		return nil, apperr.New(apperr.Validation, "query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	queryVector, err := llm.Embed(ctx, s.embedder, query)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to embed search query", err)
	}

	results, err := s.summaries.VectorSearch(ctx, userID, queryVector, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "vector search failed", err)
	}

	out := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, *r)
	}
	return out, nil
}
