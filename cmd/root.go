package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "chatd",
	Short:        "chatd - horizontally-scalable event-driven chat backend",
	Long:         `chatd runs one of the system's seven components: ingress, egress, generator, history-writer, memory-writer, history-reader, or memory-reader.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.chatd")
	}

	viper.SetEnvPrefix("CHATD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.shutdown_grace", "30s")

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// Bus
	viper.SetDefault("bus.url", "nats://localhost:4222")
	viper.SetDefault("bus.max_reconnects", 10)
	viper.SetDefault("bus.reconnect_wait", "2s")
	viper.SetDefault("bus.ack_wait_timeout", "30s")
	viper.SetDefault("bus.max_deliver", 5)
	viper.SetDefault("bus.max_ack_pending", 256)
	viper.SetDefault("bus.user_messages_subject", "user-messages")
	viper.SetDefault("bus.token_streams_subject", "token-streams")
	viper.SetDefault("bus.completed_subject", "message-completed")
	viper.SetDefault("bus.generator_queue_group", "generators")
	viper.SetDefault("bus.history_writer_durable", "history-writer")
	viper.SetDefault("bus.memory_writer_durable", "memory-writer")

	// Cache
	viper.SetDefault("cache.addr", "localhost:6379")
	viper.SetDefault("cache.db", 0)
	viper.SetDefault("cache.conversation_ttl", "24h")
	viper.SetDefault("cache.replay_buffer_ttl", "30s")

	// Store
	viper.SetDefault("store.uri", "mongodb://localhost:27017")
	viper.SetDefault("store.database", "chat")
	viper.SetDefault("store.max_pool_size", 100)
	viper.SetDefault("store.min_pool_size", 10)
	viper.SetDefault("store.history_conversations_collection", "history_conversations")
	viper.SetDefault("store.memory_conversations_collection", "memory_conversations")
	viper.SetDefault("store.memory_user_memories_collection", "memory_user_memories")
	viper.SetDefault("store.vector_index_name", "vector_embedding_index")
	viper.SetDefault("store.vector_dimensions", 1536)

	// LLM
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o")
	viper.SetDefault("llm.embedding_model", "text-embedding-3-small")
	viper.SetDefault("llm.options.temperature", 0.7)
	viper.SetDefault("llm.options.max_tokens", 4096)
	viper.SetDefault("llm.options.top_p", 1.0)
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.retry_base_delay", "200ms")

	// Auth
	viper.SetDefault("auth.require_bearer", false)

	// Generator
	viper.SetDefault("generator.max_concurrency", 16)
	viper.SetDefault("generator.memory_api_timeout", "2s")
	viper.SetDefault("generator.max_tool_calls_per_turn", 3)
	viper.SetDefault("generator.default_search_limit", 5)
	viper.SetDefault("generator.max_search_limit", 20)
	viper.SetDefault("generator.shutdown_grace", "4m")

	// Writer (History Writer / Memory Writer)
	viper.SetDefault("writer.max_concurrency", 8)
	viper.SetDefault("writer.shutdown_grace", "1m")
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	return cfg
}
