package model

import "time"

// StartSessionResponse is the body of POST /session/start's 200 reply.
type StartSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// ErrorResponse is the shared error body across every HTTP surface. It
// never leaks internal identifiers beyond sessionId/chatMessageId.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ConversationMeta is one row of History Reader's conversation-list
// endpoint: metadata only, no transcript.
type ConversationMeta struct {
	SessionID    string    `json:"sessionId"`
	Title        string    `json:"title,omitempty"`
	LastActivity time.Time `json:"lastActivity"`
	MessageCount int       `json:"messageCount"`
}

// ConversationMetaFromEntity projects a Conversation down to its list
// metadata.
func ConversationMetaFromEntity(c *Conversation) ConversationMeta {
	return ConversationMeta{
		SessionID:    c.SessionID,
		Title:        c.Title,
		LastActivity: c.LastActivity,
		MessageCount: c.MessageCount(),
	}
}

// MessagesResponse is the body of the full-transcript endpoint.
type MessagesResponse struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
}

// SearchResponse wraps Memory Reader's ranked summaries.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}
