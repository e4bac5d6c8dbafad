// Package memorywriter implements the independent completion-event
// consumer that extracts a summary and profile delta from each finished
// conversation, spec.md §4.5.
package memorywriter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
	chatmodel "github.com/tkubica12/scalable-ai-chat/internal/model"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/bus"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/cache"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/llm"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/metrics"
	"github.com/tkubica12/scalable-ai-chat/internal/repository"
	"github.com/tkubica12/scalable-ai-chat/internal/service/profile"
)

const extractionSystemPrompt = `You extract structured memory from a finished chat conversation.
Reply with a single JSON object, no surrounding prose, matching exactly:
{"summary": string, "themes": [string, up to 5], "persons": [string], "places": [string], "user_sentiment": "positive"|"neutral"|"negative", "profile_updates": {"output_preferences": [string], "personal_preferences": [string], "assistant_preferences": [string], "knowledge": [string], "interests": [string], "dislikes": [string], "family_and_friends": [string], "work_profile": [string], "goals": [string]}}
Every list field is optional; omit what you did not learn. Never invent facts not present in the conversation.`

// Service consumes message-completed on its own durable subscription,
// independent of History Writer.
type Service struct {
	cfg        config.WriterConfig
	llmCfg     *config.LLMConfig
	busCfg     config.BusConfig
	subscriber *bus.Subscriber
	cache      *cache.RedisCache
	extractor  model.ChatModel
	embedder   embedding.Embedder
	summaries  *repository.SummaryRepo
	profiles   *repository.ProfileRepo
	logger     zerolog.Logger
}

// New builds the Memory Writer service.
func New(
	cfg config.WriterConfig,
	llmCfg *config.LLMConfig,
	busCfg config.BusConfig,
	subscriber *bus.Subscriber,
	redisCache *cache.RedisCache,
	extractor model.ChatModel,
	embedder embedding.Embedder,
	summaries *repository.SummaryRepo,
	profiles *repository.ProfileRepo,
	logger zerolog.Logger,
) *Service {
	return &Service{
		cfg:        cfg,
		llmCfg:     llmCfg,
		busCfg:     busCfg,
		subscriber: subscriber,
		cache:      redisCache,
		extractor:  extractor,
		embedder:   embedder,
		summaries:  summaries,
		profiles:   profiles,
		logger:     logger,
	}
}

// Run subscribes to message-completed on the Memory Writer's own durable
// name, with up to cfg.MaxConcurrency extractions in flight.
func (s *Service) Run(ctx context.Context) error {
	msgs, err := s.subscriber.Subscribe(ctx, s.busCfg.CompletedSubj)
	if err != nil {
		return fmt.Errorf("subscribe to message-completed: %w", err)
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

func (s *Service) handle(ctx context.Context, msg *message.Message) {
	var event chatmodel.CompletionEvent
	if err := bus.DecodeJSON(msg, &event); err != nil {
		s.logger.Error().Err(err).Msg("discarding malformed message-completed delivery")
		metrics.RecordBusConsume(s.busCfg.CompletedSubj, "ack")
		msg.Ack()
		return
	}

	if err := s.extractAndStore(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("sessionId", event.SessionID).Msg("memory extraction failed")
		metrics.RecordBusConsume(s.busCfg.CompletedSubj, "nack")
		msg.Nack()
		return
	}

	metrics.RecordBusConsume(s.busCfg.CompletedSubj, "ack")
	msg.Ack()
}

func (s *Service) extractAndStore(ctx context.Context, event chatmodel.CompletionEvent) error {
	conv, hit, err := s.cache.GetConversation(ctx, event.SessionID)
	metrics.RecordHotCacheLookup(hit)
	if err != nil {
		return fmt.Errorf("read hot cache: %w", err)
	}
	if !hit {
		// Same redelivery-after-expiry case History Writer treats as a no-op.
		return nil
	}

	extraction := s.extract(ctx, conv.Messages)

	vector, err := llm.Embed(ctx, s.embedder, extraction.Summary)
	if err != nil {
		s.logger.Warn().Err(err).Msg("embedding failed, storing summary without a vector")
		vector = nil
	}

	summary := &chatmodel.ConversationSummary{
		UserID:          event.UserID,
		SessionID:       event.SessionID,
		Summary:         extraction.Summary,
		Themes:          capThemes(extraction.Themes),
		Persons:         extraction.Persons,
		Places:          extraction.Places,
		UserSentiment:   extraction.UserSentiment,
		VectorEmbedding: vector,
		Timestamp:       time.Now(),
	}
	if err := s.summaries.Upsert(ctx, summary); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}

	current, err := s.profiles.FindByUserID(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	merged := profile.Merge(current, extraction.ProfileUpdates, event.UserID, time.Now())
	if err := s.profiles.Upsert(ctx, merged); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

// extract asks the model for structured memory. On any failure it falls
// back to a minimal extraction so a summary row is still written -
// absence of insight is not a reason to lose the turn.
func (s *Service) extract(ctx context.Context, messages []chatmodel.Message) chatmodel.Extraction {
	fallback := chatmodel.Extraction{
		Summary:       fallbackSummary(messages),
		UserSentiment: chatmodel.SentimentNeutral,
	}
	if s.extractor == nil {
		return fallback
	}

	var transcript strings.Builder
	for _, m := range messages {
		if m.Role == chatmodel.RoleSystem {
			continue
		}
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}

	prompt := []*schema.Message{
		schema.SystemMessage(extractionSystemPrompt),
		schema.UserMessage(transcript.String()),
	}

	start := time.Now()
	reply, err := llm.GenerateWithRetry(ctx, s.extractor, prompt, s.llmCfg)
	metrics.RecordLLMCall("extract", time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).Msg("extraction call failed, falling back to minimal summary")
		return fallback
	}

	var extraction chatmodel.Extraction
	if err := json.Unmarshal([]byte(reply.Content), &extraction); err != nil {
		s.logger.Warn().Err(err).Msg("extraction reply was not valid JSON, falling back to minimal summary")
		return fallback
	}
	if extraction.Summary == "" {
		extraction.Summary = fallback.Summary
	}
	if extraction.UserSentiment == "" {
		extraction.UserSentiment = chatmodel.SentimentNeutral
	}
	extraction.Themes = capThemes(extraction.Themes)
	return extraction
}

func capThemes(themes []string) []string {
	if len(themes) <= chatmodel.MaxThemes {
		return themes
	}
	return themes[:chatmodel.MaxThemes]
}

func fallbackSummary(messages []chatmodel.Message) string {
	for _, m := range messages {
		if m.Role == chatmodel.RoleUser {
			return m.Content
		}
	}
	return ""
}
