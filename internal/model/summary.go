package model

import "time"

// Sentiment enumerates the three coarse sentiment buckets the Memory
// Writer's extraction step can assign to a conversation.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ConversationSummary is the Memory Writer's output for one completed
// session: a single paragraph plus extracted entities, sentiment and an
// embedding vector used for later semantic retrieval. One per sessionId,
// partitioned by userId.
type ConversationSummary struct {
	UserID         string    `bson:"user_id" json:"userId"`
	SessionID      string    `bson:"_id" json:"sessionId"`
	Summary        string    `bson:"summary" json:"summary"`
	Themes         []string  `bson:"themes" json:"themes"`
	Persons        []string  `bson:"persons" json:"persons"`
	Places         []string  `bson:"places" json:"places"`
	UserSentiment  Sentiment `bson:"user_sentiment" json:"userSentiment"`
	VectorEmbedding []float64 `bson:"vector_embedding,omitempty" json:"vectorEmbedding,omitempty"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

// MaxThemes bounds the themes list per spec (≤5).
const MaxThemes = 5

// SearchResult decorates a ConversationSummary with the cosine-derived
// relevance score of a particular query, as returned by Memory Reader's
// search endpoint and fed back to the Generator as a tool result.
type SearchResult struct {
	ConversationSummary
	RelevanceScore float64 `json:"relevanceScore"`
}
