package model

import "time"

// Conversation is the durable, ordered record of one chat session, owned
// by exactly one user. The hot cache and the history store both hold a
// copy of this shape; the cache may be ahead by at most one in-flight
// turn (spec invariant).
type Conversation struct {
	SessionID    string    `bson:"_id" json:"sessionId"`
	UserID       string    `bson:"user_id" json:"userId"`
	Title        string    `bson:"title,omitempty" json:"title,omitempty"`
	Messages     []Message `bson:"messages" json:"messages"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	LastActivity time.Time `bson:"last_activity" json:"lastActivity"`
	PersistedAt  time.Time `bson:"persisted_at,omitempty" json:"persistedAt,omitempty"`
}

// MessageCount returns the number of messages, used by History Reader's
// list endpoint which omits the full transcript.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// HasAssistantReply reports whether an assistant message already exists
// for chatMessageID, used by the Generator to detect bus redelivery.
func (c *Conversation) HasAssistantReply(chatMessageID string) bool {
	want := AssistantMessageID(chatMessageID)
	for _, m := range c.Messages {
		if m.MessageID == want {
			return true
		}
	}
	return false
}

// Role enumerates the three message roles a Conversation can hold.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one append-only entry in a Conversation. MessageID derives
// from the turn's chatMessageId so the user/assistant pair shares a
// correlator (`{chatMessageId}_user` / `{chatMessageId}_assistant`).
type Message struct {
	MessageID string    `bson:"message_id" json:"messageId"`
	Role      Role      `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// SystemMessageID, UserMessageID, AssistantMessageID derive the natural
// message id for each role sharing one turn's chatMessageId.
func SystemMessageID(chatMessageID string) string    { return chatMessageID + "_system" }
func UserMessageID(chatMessageID string) string      { return chatMessageID + "_user" }
func AssistantMessageID(chatMessageID string) string { return chatMessageID + "_assistant" }
