// Package ingress implements the stateless HTTP entrypoint that starts
// sessions and enqueues chat turns onto the bus, per spec.md §4.1.
package ingress

import (
	"context"
	"time"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
	"github.com/tkubica12/scalable-ai-chat/internal/model"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/apperr"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/bus"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/id"
)

// UserDirectory validates that a userId is known to the system. The
// reference implementation is an in-memory set loaded from config;
// production deployments can swap in a directory-backed implementation.
type UserDirectory interface {
	Known(userID string) bool
}

// StaticDirectory is an in-memory UserDirectory loaded once at startup.
type StaticDirectory struct {
	users map[string]struct{}
}

// NewStaticDirectory builds a StaticDirectory from a fixed user list.
func NewStaticDirectory(users []string) *StaticDirectory {
	set := make(map[string]struct{}, len(users))
	for _, u := range users {
		set[u] = struct{}{}
	}
	return &StaticDirectory{users: set}
}

// Known reports whether userID is in the directory.
func (d *StaticDirectory) Known(userID string) bool {
	_, ok := d.users[userID]
	return ok
}

// Service implements the Ingress component's two operations.
type Service struct {
	publisher *bus.Publisher
	directory UserDirectory
	busCfg    config.BusConfig
}

// New builds the Ingress service.
func New(publisher *bus.Publisher, directory UserDirectory, busCfg config.BusConfig) *Service {
	return &Service{publisher: publisher, directory: directory, busCfg: busCfg}
}

// StartSession validates userID and mints a new sessionId. Ingress is
// scale-to-zero tolerant: no in-memory session table is kept, the
// sessionId is simply an opaque identifier the caller will use as the
// hot-cache/document-store key going forward.
func (s *Service) StartSession(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperr.New(apperr.Validation, "userId is required")
	}
	if !s.directory.Known(userID) {
		return "", apperr.New(apperr.NotFound, "unknown user")
	}
	return id.New(), nil
}

// SubmitChat validates and enqueues one chat turn onto user-messages.
func (s *Service) SubmitChat(ctx context.Context, req model.ChatRequest) error {
	if req.SessionID == "" || req.ChatMessageID == "" || req.UserID == "" || req.Message == "" {
		return apperr.New(apperr.Validation, "sessionId, chatMessageId, userId and message are required")
	}
	if !s.directory.Known(req.UserID) {
		return apperr.New(apperr.NotFound, "unknown user")
	}

	envelope := model.UserMessageEnvelope{
		SessionID:     req.SessionID,
		UserID:        req.UserID,
		ChatMessageID: req.ChatMessageID,
		Text:          req.Message,
		SubmittedAt:   time.Now(),
	}

	if err := s.publisher.PublishJSON(ctx, s.busCfg.UserMessagesSubj, req.SessionID, envelope); err != nil {
		return apperr.Wrap(apperr.Transient, "failed to enqueue chat message", err)
	}
	return nil
}
