package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
)

const conversationKeyPrefix = "session:"

// ConversationKey builds the hot-cache key for a Conversation, per the
// persisted-state layout: `session:{sessionId}`.
func ConversationKey(sessionID string) string {
	return conversationKeyPrefix + sessionID
}

// GetConversation loads a Conversation from the hot cache. The returned
// bool reports whether the key existed.
func (c *RedisCache) GetConversation(ctx context.Context, sessionID string) (*model.Conversation, bool, error) {
	var conv model.Conversation
	err := c.Get(ctx, ConversationKey(sessionID), &conv)
	if IsMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &conv, true, nil
}

// PutConversation writes conv back to the hot cache and refreshes its TTL
// to ttl, the single synchronous write the Generator performs before
// acknowledging the bus delivery.
func (c *RedisCache) PutConversation(ctx context.Context, conv *model.Conversation, ttl time.Duration) error {
	return c.Set(ctx, ConversationKey(conv.SessionID), conv, ttl)
}

const replayBufferPrefix = "replay:"

// ReplayBufferKey builds the short-lived replay-buffer key for one turn,
// used to resolve the connect-after-complete SSE race documented in
// spec §5.
func ReplayBufferKey(sessionID, chatMessageID string) string {
	return fmt.Sprintf("%s%s:%s", replayBufferPrefix, sessionID, chatMessageID)
}

// ReplayEntry is what the Generator leaves behind for Egress to read if
// the client connects after the stream has already ended.
type ReplayEntry struct {
	AssistantMessage string `json:"assistantMessage"`
	Ended            bool   `json:"ended"`
}

// PutReplay records that a turn ended, for a short window of ttl. The
// Generator passes a fixed 30s; the cache.replay_buffer_ttl setting is
// not read.
func (c *RedisCache) PutReplay(ctx context.Context, sessionID, chatMessageID, assistantMessage string, ttl time.Duration) error {
	return c.Set(ctx, ReplayBufferKey(sessionID, chatMessageID), ReplayEntry{
		AssistantMessage: assistantMessage,
		Ended:            true,
	}, ttl)
}

// GetReplay looks up a replay entry left behind by a completed turn.
func (c *RedisCache) GetReplay(ctx context.Context, sessionID, chatMessageID string) (*ReplayEntry, bool, error) {
	var entry ReplayEntry
	err := c.Get(ctx, ReplayBufferKey(sessionID, chatMessageID), &entry)
	if IsMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}
