// Package historyreader implements the read-only HTTP surface over the
// durable history store, spec.md §4.6.
package historyreader

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/apperr"
	"github.com/tkubica12/scalable-ai-chat/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service exposes the three History Reader operations, scaled
// independently of the writer fleet since it never mutates state.
type Service struct {
	history *repository.ConversationRepo
}

// New builds the History Reader service.
func New(history *repository.ConversationRepo) *Service {
	return &Service{history: history}
}

// ListConversations returns a user's conversations, newest first.
func (s *Service) ListConversations(ctx context.Context, userID string, limit, offset int64) ([]model.ConversationMeta, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	convs, err := s.history.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "failed to list conversations", err)
	}

	metas := make([]model.ConversationMeta, 0, len(convs))
	for _, c := range convs {
		metas = append(metas, model.ConversationMetaFromEntity(c))
	}
	return metas, nil
}

// GetMessages returns the full transcript of one conversation owned by
// userID.
func (s *Service) GetMessages(ctx context.Context, userID, sessionID string) (*model.MessagesResponse, error) {
	conv, err := s.history.FindBySessionID(ctx, userID, sessionID)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "conversation not found", err)
	}
	return &model.MessagesResponse{SessionID: conv.SessionID, Messages: conv.Messages}, nil
}

// SetTitle renames a conversation owned by userID. Returns a NotFound
// error for a nonexistent session or one owned by a different user,
// per the store's cross-partition scoping.
func (s *Service) SetTitle(ctx context.Context, userID, sessionID, title string) error {
	if title == "" {
		return apperr.New(apperr.Validation, "title is required")
	}
	if err := s.history.SetTitle(ctx, userID, sessionID, title); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.Wrap(apperr.NotFound, "conversation not found", err)
		}
		return apperr.Wrap(apperr.Upstream, "failed to set title", err)
	}
	return nil
}
