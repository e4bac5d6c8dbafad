// Package historywriter implements the independent completion-event
// consumer that titles and persists finished conversations into the
// durable history store, spec.md §4.4.
package historywriter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
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
)

const defaultTitle = "New Conversation"

// titleMaxMessages bounds how much of a conversation is fed to the title
// prompt: the opening exchange is enough to name the thread.
const titleMaxMessages = 6

// titleMaxWords bounds the length of a cleaned title.
const titleMaxWords = 6

// Service consumes message-completed on its own durable subscription and
// persists the finished conversation, naming it on first completion.
type Service struct {
	cfg        config.WriterConfig
	llmCfg     *config.LLMConfig
	busCfg     config.BusConfig
	subscriber *bus.Subscriber
	cache      *cache.RedisCache
	history    *repository.ConversationRepo
	titleModel model.ChatModel
	logger     zerolog.Logger
}

// New builds the History Writer service.
func New(
	cfg config.WriterConfig,
	llmCfg *config.LLMConfig,
	busCfg config.BusConfig,
	subscriber *bus.Subscriber,
	redisCache *cache.RedisCache,
	history *repository.ConversationRepo,
	titleModel model.ChatModel,
	logger zerolog.Logger,
) *Service {
	return &Service{
		cfg:        cfg,
		llmCfg:     llmCfg,
		busCfg:     busCfg,
		subscriber: subscriber,
		cache:      redisCache,
		history:    history,
		titleModel: titleModel,
		logger:     logger,
	}
}

// Run subscribes to message-completed on the History Writer's own
// durable name, so it fans out independently of Memory Writer.
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

	if err := s.persist(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("sessionId", event.SessionID).Msg("failed to persist conversation")
		metrics.RecordBusConsume(s.busCfg.CompletedSubj, "nack")
		msg.Nack()
		return
	}

	metrics.RecordBusConsume(s.busCfg.CompletedSubj, "ack")
	msg.Ack()
}

func (s *Service) persist(ctx context.Context, event chatmodel.CompletionEvent) error {
	conv, hit, err := s.cache.GetConversation(ctx, event.SessionID)
	metrics.RecordHotCacheLookup(hit)
	if err != nil {
		return fmt.Errorf("read hot cache: %w", err)
	}
	if !hit {
		// The Generator writes the cache synchronously before publishing
		// the completion event, so a miss here means the entry already
		// expired; nothing to persist for this redelivery.
		return nil
	}

	if conv.Title == "" {
		conv.Title = s.generateTitle(ctx, conv.Messages)
	}
	conv.PersistedAt = time.Now()

	return s.history.Upsert(ctx, conv)
}

func (s *Service) generateTitle(ctx context.Context, messages []chatmodel.Message) string {
	if s.titleModel == nil {
		return defaultTitle
	}

	window := messages
	if len(window) > titleMaxMessages {
		window = window[:titleMaxMessages]
	}

	var transcript strings.Builder
	for _, m := range window {
		if m.Role == chatmodel.RoleSystem {
			continue
		}
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}

	prompt := []*schema.Message{
		schema.SystemMessage("Produce a 3 to 6 word title for this conversation. Reply with the title only, no punctuation at the end."),
		schema.UserMessage(transcript.String()),
	}

	start := time.Now()
	reply, err := llm.GenerateWithRetry(ctx, s.titleModel, prompt, s.llmCfg)
	metrics.RecordLLMCall("title", time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).Msg("title generation failed, using default title")
		return defaultTitle
	}

	title := cleanTitle(reply.Content)
	if title == "" {
		return defaultTitle
	}
	return title
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanTitle collapses whitespace, strips wrapping quotes the model
// sometimes adds around its answer, and keeps at most titleMaxWords
// words.
func cleanTitle(raw string) string {
	title := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	title = strings.Trim(title, `"'`)
	if words := strings.Fields(title); len(words) > titleMaxWords {
		title = strings.Join(words[:titleMaxWords], " ")
	}
	return title
}
