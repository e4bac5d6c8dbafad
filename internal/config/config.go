package config

import (
	"errors"
	"time"
)

// Config is the root configuration shared by every component binary. Each
// `chatd serve <component>` subcommand only reads the sections it needs,
// but all components load the same file/env so operators have a single
// place to look.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Bus       BusConfig       `mapstructure:"bus"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Store     StoreConfig     `mapstructure:"store"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Ingress   IngressConfig   `mapstructure:"ingress"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Writer    WriterConfig    `mapstructure:"writer"`
}

// ServerConfig is the HTTP listener configuration for Ingress, Egress,
// History Reader and Memory Reader.
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	Mode          string        `mapstructure:"mode"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// LogConfig configures the Zerolog output.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// BusConfig configures the NATS JetStream connection backing the
// user-messages / token-streams / message-completed topics.
type BusConfig struct {
	URL              string        `mapstructure:"url"`
	MaxReconnects    int           `mapstructure:"max_reconnects"`
	ReconnectWait    time.Duration `mapstructure:"reconnect_wait"`
	AckWaitTimeout   time.Duration `mapstructure:"ack_wait_timeout"`
	MaxDeliver       int           `mapstructure:"max_deliver"`
	MaxAckPending    int           `mapstructure:"max_ack_pending"`
	UserMessagesSubj string        `mapstructure:"user_messages_subject"`
	TokenStreamsSubj string        `mapstructure:"token_streams_subject"`
	CompletedSubj    string        `mapstructure:"completed_subject"`

	// GeneratorQueueGroup is the competing-consumer queue group shared by
	// every Generator instance on user-messages.
	GeneratorQueueGroup string `mapstructure:"generator_queue_group"`

	// HistoryWriterDurable / MemoryWriterDurable are two independent
	// durable consumer names on message-completed, giving each writer
	// fleet its own fan-out subscription (spec §5).
	HistoryWriterDurable string `mapstructure:"history_writer_durable"`
	MemoryWriterDurable  string `mapstructure:"memory_writer_durable"`
}

// CacheConfig configures the Redis-backed hot cache.
type CacheConfig struct {
	Addr            string        `mapstructure:"addr"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	ConversationTTL time.Duration `mapstructure:"conversation_ttl"`
	ReplayBufferTTL time.Duration `mapstructure:"replay_buffer_ttl"`
}

// StoreConfig configures the Mongo-compatible durable document store.
type StoreConfig struct {
	URI                      string `mapstructure:"uri"`
	Database                 string `mapstructure:"database"`
	MaxPoolSize              uint64 `mapstructure:"max_pool_size"`
	MinPoolSize              uint64 `mapstructure:"min_pool_size"`
	HistoryConversationsColl string `mapstructure:"history_conversations_collection"`
	MemoryConversationsColl  string `mapstructure:"memory_conversations_collection"`
	MemoryUserMemoriesColl   string `mapstructure:"memory_user_memories_collection"`
	VectorIndexName          string `mapstructure:"vector_index_name"`
	VectorDimensions         int    `mapstructure:"vector_dimensions"`
}

// LLMConfig configures the chat-completion and embeddings collaborators.
type LLMConfig struct {
	Provider         string          `mapstructure:"provider"`
	APIKey           string          `mapstructure:"api_key"`
	Model            string          `mapstructure:"model"`
	BaseURL          string          `mapstructure:"base_url"`
	Options          AIOptionsConfig `mapstructure:"options"`
	EmbeddingModel   string          `mapstructure:"embedding_model"`
	EmbeddingBaseURL string          `mapstructure:"embedding_base_url"`
	MaxRetries       int             `mapstructure:"max_retries"`
	RetryBaseDelay   time.Duration   `mapstructure:"retry_base_delay"`
}

// AIOptionsConfig carries model sampling parameters.
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// AuthConfig configures the identity middleware. Authentication itself is
// an external collaborator (spec §1); this only verifies that a
// pre-validated identity asserted in a bearer token matches the resource
// being accessed.
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	RequireBearer bool   `mapstructure:"require_bearer"`
}

// IngressConfig configures the known-user directory.
type IngressConfig struct {
	KnownUsers []string `mapstructure:"known_users"`
}

// GeneratorConfig configures the Generator's concurrency and tool-calling
// behaviour.
type GeneratorConfig struct {
	MaxConcurrency      int           `mapstructure:"max_concurrency"`
	MemoryAPIEndpoint   string        `mapstructure:"memory_api_endpoint"`
	MemoryAPITimeout    time.Duration `mapstructure:"memory_api_timeout"`
	MaxToolCallsPerTurn int           `mapstructure:"max_tool_calls_per_turn"`
	DefaultSearchLimit  int           `mapstructure:"default_search_limit"`
	MaxSearchLimit      int           `mapstructure:"max_search_limit"`
	// ShutdownGrace bounds how long a draining Generator waits for
	// in-flight turns to finish before exiting anyway (spec: 4 minutes,
	// long enough for a streaming reply already underway to complete).
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// WriterConfig configures History Writer / Memory Writer worker pools.
type WriterConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
	// ShutdownGrace bounds how long a draining writer waits for in-flight
	// extractions/persists to finish before exiting anyway (spec: 1 minute).
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// Validate checks invariants common to every HTTP-facing component.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Store.VectorDimensions < 0 {
		return errors.New("invalid vector dimensions")
	}

	return nil
}
