// Package generator implements the single-writer Generator component,
// spec.md §4.3: it is the only service that writes a Conversation to the
// hot cache, streams tokens back over the bus as the model produces them, and owns
// the model's tool-calling loop.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
	chatmodel "github.com/tkubica12/scalable-ai-chat/internal/model"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/breaker"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/bus"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/cache"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/llm"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/metrics"
	"github.com/tkubica12/scalable-ai-chat/internal/repository"

	"github.com/sony/gobreaker/v2"
)

// Service consumes user-messages as a competing consumer, owns a turn's
// full lifecycle, and is the only writer of conversation entries in the
// hot cache; it reads the history store only on a cache miss.
type Service struct {
	cfg         config.GeneratorConfig
	busCfg      config.BusConfig
	llmCfg      *config.LLMConfig
	cacheTTL    time.Duration
	subscriber  *bus.Subscriber
	publisher   *bus.Publisher
	cache       *cache.RedisCache
	history     *repository.ConversationRepo
	chatModel   model.ToolCallingChatModel
	memory      *MemoryClient
	chatBreaker *gobreaker.CircuitBreaker[any]
	logger      zerolog.Logger
}

// New builds the Generator service.
func New(
	cfg config.GeneratorConfig,
	busCfg config.BusConfig,
	llmCfg *config.LLMConfig,
	cacheTTL time.Duration,
	subscriber *bus.Subscriber,
	publisher *bus.Publisher,
	redisCache *cache.RedisCache,
	history *repository.ConversationRepo,
	chatModel model.ToolCallingChatModel,
	memory *MemoryClient,
	logger zerolog.Logger,
) *Service {
	return &Service{
		cfg:         cfg,
		busCfg:      busCfg,
		llmCfg:      llmCfg,
		cacheTTL:    cacheTTL,
		subscriber:  subscriber,
		publisher:   publisher,
		cache:       redisCache,
		history:     history,
		chatModel:   chatModel,
		memory:      memory,
		chatBreaker: breaker.New("llm-chat"),
		logger:      logger,
	}
}

// Run subscribes to user-messages and processes turns with up to
// cfg.MaxConcurrency in flight, until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	msgs, err := s.subscriber.Subscribe(ctx, s.busCfg.UserMessagesSubj)
	if err != nil {
		return fmt.Errorf("subscribe to user-messages: %w", err)
	}

	maxConcurrency := s.cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	sem := make(chan struct{}, maxConcurrency)

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case msg, ok := <-msgs:
			if !ok {
				wg.Wait()
				return nil
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(msg *message.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				s.handle(ctx, msg)
			}(msg)
		}
	}
}

// handle decodes and processes a single user-messages delivery, acking
// on success and abandoning (nacking) on persistent failure so JetStream
// redelivers it, per spec.md §4.3's failure semantics.
func (s *Service) handle(ctx context.Context, msg *message.Message) {
	metrics.GeneratorActiveTurns.Inc()
	defer metrics.GeneratorActiveTurns.Dec()

	var envelope chatmodel.UserMessageEnvelope
	if err := bus.DecodeJSON(msg, &envelope); err != nil {
		s.logger.Error().Err(err).Msg("discarding malformed user-messages delivery")
		metrics.RecordBusConsume(s.busCfg.UserMessagesSubj, "ack")
		msg.Ack()
		return
	}

	if err := s.processTurn(ctx, envelope); err != nil {
		s.logger.Error().Err(err).Str("sessionId", envelope.SessionID).Str("chatMessageId", envelope.ChatMessageID).Msg("turn failed")
		metrics.RecordBusConsume(s.busCfg.UserMessagesSubj, "nack")
		msg.Nack()
		return
	}

	metrics.RecordBusConsume(s.busCfg.UserMessagesSubj, "ack")
	msg.Ack()
}

// processTurn runs one chat turn end to end: load, personalize if new,
// stream a reply (with tool calls), persist, and announce completion.
func (s *Service) processTurn(ctx context.Context, env chatmodel.UserMessageEnvelope) error {
	conv, isNew, err := s.loadConversation(ctx, env.UserID, env.SessionID)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}

	if conv.HasAssistantReply(env.ChatMessageID) {
		return s.publishEndSentinel(ctx, env, "")
	}

	if isNew {
		profile := s.fetchProfile(ctx, env.UserID)
		conv.Messages = append(conv.Messages, chatmodel.Message{
			MessageID: chatmodel.SystemMessageID(env.ChatMessageID),
			Role:      chatmodel.RoleSystem,
			Content:   RenderSystemPrompt(profile),
			Timestamp: time.Now(),
		})
	}

	conv.Messages = append(conv.Messages, chatmodel.Message{
		MessageID: chatmodel.UserMessageID(env.ChatMessageID),
		Role:      chatmodel.RoleUser,
		Content:   env.Text,
		Timestamp: time.Now(),
	})

	history := toSchemaMessages(conv.Messages)

	assistantContent, err := s.runTurn(ctx, env, history)
	if err != nil {
		s.publishError(ctx, env, err)
		return err
	}

	conv.Messages = append(conv.Messages, chatmodel.Message{
		MessageID: chatmodel.AssistantMessageID(env.ChatMessageID),
		Role:      chatmodel.RoleAssistant,
		Content:   assistantContent,
		Timestamp: time.Now(),
	})
	conv.LastActivity = time.Now()
	if isNew {
		conv.SessionID = env.SessionID
		conv.UserID = env.UserID
		conv.CreatedAt = time.Now()
	}

	// Synchronous write before acknowledgment: the hot cache must reflect
	// this turn before the bus delivery is acked, per the at-most-one-in-flight
	// invariant between cache and history store.
	if err := s.cache.PutConversation(ctx, conv, s.cacheTTL); err != nil {
		return fmt.Errorf("write hot cache: %w", err)
	}

	if err := s.publishEndSentinel(ctx, env, assistantContent); err != nil {
		return err
	}

	completion := chatmodel.NewCompletionEvent(env.SessionID, env.UserID, env.ChatMessageID, time.Now())
	if err := s.publisher.PublishJSON(ctx, s.busCfg.CompletedSubj, env.SessionID, completion); err != nil {
		return fmt.Errorf("publish completion event: %w", err)
	}
	metrics.RecordBusPublish(s.busCfg.CompletedSubj)

	return nil
}

// runTurn drives the model through RunTurn, publishing token deltas as
// they arrive and wrapping the call in the chat circuit breaker.
func (s *Service) runTurn(ctx context.Context, env chatmodel.UserMessageEnvelope, history []*schema.Message) (string, error) {
	onToken := func(token string) {
		s.publisher.PublishJSON(ctx, bus.TokenStreamSubject(s.busCfg, env.SessionID), env.SessionID, chatmodel.TokenFragment{
			SessionID:     env.SessionID,
			ChatMessageID: env.ChatMessageID,
			Token:         token,
		})
	}

	toolExec := func(ctx context.Context, toolName, argsJSON string) (string, error) {
		if toolName != llm.SearchHistoryToolName {
			return "", fmt.Errorf("unknown tool %q", toolName)
		}
		args, err := llm.ParseSearchHistoryArgs(argsJSON)
		if err != nil {
			return "", err
		}
		limit := args.Limit
		if s.cfg.MaxSearchLimit > 0 && limit > s.cfg.MaxSearchLimit {
			limit = s.cfg.MaxSearchLimit
		}
		metrics.RecordToolCall(llm.SearchHistoryToolName)

		results, err := s.memory.Search(ctx, env.UserID, args.SearchQuery, limit)
		if err != nil {
			return "", err
		}
		payload, err := json.Marshal(results)
		if err != nil {
			return "", err
		}
		return string(payload), nil
	}

	var assistantMsg *schema.Message
	call := breaker.Do(s.chatBreaker, func(ctx context.Context) error {
		msg, err := llm.RunTurnWithRetry(ctx, s.chatModel, history, []*schema.ToolInfo{llm.SearchHistoryTool()}, toolExec, s.cfg.MaxToolCallsPerTurn, onToken, s.llmCfg)
		if err != nil {
			return err
		}
		assistantMsg = msg
		return nil
	})

	start := time.Now()
	err := call(ctx)
	metrics.RecordLLMCall("chat", time.Since(start), err)
	if err != nil {
		return "", err
	}
	return assistantMsg.Content, nil
}

// loadConversation loads the hot-cache copy of a conversation, falling
// back to the history store on a cache miss, and reports whether this is
// a brand-new conversation (no prior copy anywhere).
func (s *Service) loadConversation(ctx context.Context, userID, sessionID string) (*chatmodel.Conversation, bool, error) {
	conv, hit, err := s.cache.GetConversation(ctx, sessionID)
	metrics.RecordHotCacheLookup(hit)
	if err != nil {
		return nil, false, err
	}
	if hit {
		if s.cacheTTL > 0 {
			if err := s.cache.Expire(ctx, cache.ConversationKey(sessionID), s.cacheTTL); err != nil {
				s.logger.Warn().Err(err).Str("sessionId", sessionID).Msg("failed to refresh conversation TTL")
			}
		}
		return conv, false, nil
	}

	conv, err = s.history.FindBySessionID(ctx, userID, sessionID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &chatmodel.Conversation{SessionID: sessionID, UserID: userID}, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return conv, false, nil
}

// fetchProfile fetches the caller's profile within the configured hard
// timeout, returning nil (base prompt, no personalization) on any error
// or timeout rather than blocking the turn.
func (s *Service) fetchProfile(ctx context.Context, userID string) *chatmodel.UserProfile {
	timeout := s.cfg.MemoryAPITimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	profile, err := s.memory.FetchProfile(fetchCtx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("userId", userID).Msg("profile fetch failed, using base prompt")
		return nil
	}
	return profile
}

// publishEndSentinel closes out a turn's token stream and leaves a
// replay-buffer entry so a client connecting after the fact still sees a
// result instead of hanging.
func (s *Service) publishEndSentinel(ctx context.Context, env chatmodel.UserMessageEnvelope, assistantContent string) error {
	if err := s.cache.PutReplay(ctx, env.SessionID, env.ChatMessageID, assistantContent, 30*time.Second); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write replay buffer entry")
	}

	fragment := chatmodel.TokenFragment{SessionID: env.SessionID, ChatMessageID: env.ChatMessageID, End: true}
	if err := s.publisher.PublishJSON(ctx, bus.TokenStreamSubject(s.busCfg, env.SessionID), env.SessionID, fragment); err != nil {
		return fmt.Errorf("publish end sentinel: %w", err)
	}
	metrics.RecordBusPublish(s.busCfg.TokenStreamsSubj)
	return nil
}

// publishError announces a failed turn on the token stream so a
// connected Egress client gets an error event instead of hanging until
// idle timeout.
func (s *Service) publishError(ctx context.Context, env chatmodel.UserMessageEnvelope, err error) {
	fragment := chatmodel.TokenFragment{SessionID: env.SessionID, ChatMessageID: env.ChatMessageID, Error: err.Error()}
	if pubErr := s.publisher.PublishJSON(ctx, bus.TokenStreamSubject(s.busCfg, env.SessionID), env.SessionID, fragment); pubErr != nil {
		s.logger.Error().Err(pubErr).Msg("failed to publish error fragment")
	}
}
