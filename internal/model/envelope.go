package model

import "time"

// UserMessageEnvelope is published by Ingress onto the user-messages
// topic and consumed by Generator instances as competing consumers.
// sessionId is used as the bus partition key only, not as a bus session:
// ordering within a session is enforced by the Generator via the hot
// cache, not by the bus.
type UserMessageEnvelope struct {
	SessionID     string    `json:"sessionId"`
	UserID        string    `json:"userId"`
	ChatMessageID string    `json:"chatMessageId"`
	Text          string    `json:"text"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// TokenFragment is published by the Generator onto token-streams, session
// keyed by sessionId so delivery to a single Egress session receiver is
// serialised. End marks the sentinel fragment that closes an SSE stream;
// it carries no Token payload.
type TokenFragment struct {
	SessionID     string `json:"sessionId"`
	ChatMessageID string `json:"chatMessageId"`
	Token         string `json:"token,omitempty"`
	End           bool   `json:"end,omitempty"`
	Error         string `json:"error,omitempty"`
}

// CompletionEventType is the only event type currently emitted on the
// message-completed topic.
const CompletionEventType = "message_completed"

// CompletionEvent drives History Writer and Memory Writer, each on its
// own independent subscription.
type CompletionEvent struct {
	SessionID     string    `json:"sessionId"`
	UserID        string    `json:"userId"`
	ChatMessageID string    `json:"chatMessageId"`
	CompletedAt   time.Time `json:"completedAt"`
	EventType     string    `json:"eventType"`
}

// NewCompletionEvent builds a CompletionEvent for a just-finished turn.
func NewCompletionEvent(sessionID, userID, chatMessageID string, completedAt time.Time) CompletionEvent {
	return CompletionEvent{
		SessionID:     sessionID,
		UserID:        userID,
		ChatMessageID: chatMessageID,
		CompletedAt:   completedAt,
		EventType:     CompletionEventType,
	}
}
