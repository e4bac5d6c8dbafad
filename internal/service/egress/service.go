// Package egress implements the long-lived SSE streaming surface, per
// spec.md §4.2: one stream per (sessionId, chatMessageId), fed by a
// per-session bus subject and a short replay buffer for the
// connect-after-complete race.
package egress

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
	"github.com/tkubica12/scalable-ai-chat/internal/model"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/bus"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/cache"
)

// Event is one item Stream sends to the HTTP handler: either a token
// delta, an end-of-stream marker, or an error.
type Event struct {
	Token string
	End   bool
	Err   error
}

// Service opens per-session bus receivers and filters them down to one
// chatMessageId.
type Service struct {
	cfg        config.BusConfig
	cache      *cache.RedisCache
	logger     zerolog.Logger
	idleTicker time.Duration
}

// New builds the Egress service.
func New(cfg config.BusConfig, redisCache *cache.RedisCache, logger zerolog.Logger, idleTimeout time.Duration) *Service {
	return &Service{cfg: cfg, cache: redisCache, logger: logger, idleTicker: idleTimeout}
}

// Stream opens a session receiver on token-streams for sessionID and
// forwards fragments whose chatMessageId matches, until the end sentinel
// for that turn, idle timeout, or ctx cancellation. It first consults the
// replay buffer so a client connecting after the turn already finished
// still sees a result instead of hanging.
func (s *Service) Stream(ctx context.Context, sessionID, chatMessageID string) (<-chan Event, error) {
	events := make(chan Event, 16)

	if entry, ok, err := s.cache.GetReplay(ctx, sessionID, chatMessageID); err == nil && ok {
		go func() {
			defer close(events)
			if entry.AssistantMessage != "" {
				events <- Event{Token: entry.AssistantMessage}
			}
			events <- Event{End: true}
		}()
		return events, nil
	}

	subscriber, err := bus.NewSubscriber(s.cfg, bus.SubscriberOptions{
		QueueGroup:     "", // no queue group: every Egress instance gets its own copy
		AckWaitTimeout: 30 * time.Second,
		MaxDeliver:     1,
		MaxAckPending:  64,
	}, s.logger)
	if err != nil {
		return nil, err
	}

	subject := bus.TokenStreamSubject(s.cfg, sessionID)
	msgs, err := subscriber.Subscribe(ctx, subject)
	if err != nil {
		subscriber.Close()
		return nil, err
	}

	go func() {
		defer close(events)
		defer subscriber.Close()

		idle := s.idleTicker
		if idle <= 0 {
			idle = 5 * time.Minute
		}
		timer := time.NewTimer(idle)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				events <- Event{Err: context.DeadlineExceeded}
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var fragment model.TokenFragment
				if err := json.Unmarshal(msg.Payload, &fragment); err != nil {
					msg.Ack()
					continue
				}
				msg.Ack()

				if fragment.ChatMessageID != chatMessageID {
					continue
				}

				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(idle)

				if fragment.Error != "" {
					events <- Event{Err: errors.New(fragment.Error)}
					return
				}
				if fragment.End {
					events <- Event{End: true}
					return
				}
				events <- Event{Token: fragment.Token}
			}
		}
	}()

	return events, nil
}
