package llm

import (
	"context"
	"math/rand"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
)

// GenerateWithRetry calls chatModel.Generate once and retries transient
// failures with jittered backoff, per spec.md §4.3's "retry with
// jittered backoff up to N attempts within a single delivery". Used by
// History Writer's title generation and Memory Writer's extraction call,
// both single-shot (non-streaming) completions.
func GenerateWithRetry(ctx context.Context, chatModel model.ChatModel, messages []*schema.Message, cfg *config.LLMConfig) (*schema.Message, error) {
	var lastErr error
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := jitteredBackoff(cfg.RetryBaseDelay, attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		msg, err := chatModel.Generate(ctx, messages)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

func jitteredBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	backoff := base * time.Duration(1<<uint(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(base)))
	return backoff + jitter
}
