package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
)

// TurnState is the generation state machine spec.md §9 calls for:
// Streaming while tokens flow, AwaitingToolResult while a tool call is
// resolved, Closed once the model has produced a final answer.
type TurnState int

const (
	StateStreaming TurnState = iota
	StateAwaitingToolResult
	StateClosed
)

// ToolExecutor resolves one tool call's arguments into the string fed
// back to the model as the tool's result message.
type ToolExecutor func(ctx context.Context, toolName, argsJSON string) (string, error)

// RunTurn drives one streaming chat turn to completion, interleaving
// token deltas with at most maxToolCalls tool-call round trips. onToken
// is invoked for every non-empty content delta, in emission order, so
// the caller can publish it to the token stream as it arrives.
func RunTurn(
	ctx context.Context,
	chatModel model.ToolCallingChatModel,
	history []*schema.Message,
	tools []*schema.ToolInfo,
	exec ToolExecutor,
	maxToolCalls int,
	onToken func(string),
) (*schema.Message, error) {
	bound := chatModel
	if len(tools) > 0 {
		withTools, err := chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("bind tools: %w", err)
		}
		bound = withTools
	}

	messages := append([]*schema.Message(nil), history...)
	toolCallsUsed := 0
	state := StateStreaming

	for {
		switch state {
		case StateStreaming:
			content, toolCalls, err := streamOnce(ctx, bound, messages, onToken)
			if err != nil {
				return nil, err
			}

			if len(toolCalls) == 0 || toolCallsUsed >= maxToolCalls {
				state = StateClosed
				return schema.AssistantMessage(content, nil), nil
			}

			messages = append(messages, schema.AssistantMessage(content, toolCalls))
			state = StateAwaitingToolResult

			for _, tc := range toolCalls {
				if toolCallsUsed >= maxToolCalls {
					break
				}
				toolCallsUsed++

				result, execErr := exec(ctx, tc.Function.Name, tc.Function.Arguments)
				if execErr != nil {
					result = fmt.Sprintf(`{"error": %q}`, execErr.Error())
				}

				messages = append(messages, schema.ToolMessage(result, tc.ID))
			}
			state = StateStreaming
		case StateClosed:
			return nil, fmt.Errorf("run turn: resumed after close")
		}
	}
}

// RunTurnWithRetry retries RunTurn with jittered backoff on transient
// failures, up to cfg.MaxRetries attempts within a single bus delivery.
// A retried attempt restarts the stream from the same history rather
// than resuming mid-reply; token fragments already published by the
// failed attempt are harmless, since the client only acts on the final
// end-of-stream sentinel.
func RunTurnWithRetry(
	ctx context.Context,
	chatModel model.ToolCallingChatModel,
	history []*schema.Message,
	tools []*schema.ToolInfo,
	exec ToolExecutor,
	maxToolCalls int,
	onToken func(string),
	cfg *config.LLMConfig,
) (*schema.Message, error) {
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := jitteredBackoff(cfg.RetryBaseDelay, attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		msg, err := RunTurn(ctx, chatModel, history, tools, exec, maxToolCalls, onToken)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

// streamOnce reads one full model.Stream response, accumulating content
// and any tool calls the delta stream carried.
func streamOnce(ctx context.Context, chatModel model.ToolCallingChatModel, messages []*schema.Message, onToken func(string)) (string, []schema.ToolCall, error) {
	stream, err := chatModel.Stream(ctx, messages)
	if err != nil {
		return "", nil, fmt.Errorf("start chat stream: %w", err)
	}
	defer stream.Close()

	var content string
	toolCallsByKey := map[string]*schema.ToolCall{}
	var order []string

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("receive chat stream chunk: %w", err)
		}

		if chunk.Content != "" {
			content += chunk.Content
			if onToken != nil {
				onToken(chunk.Content)
			}
		}

		for i := range chunk.ToolCalls {
			delta := chunk.ToolCalls[i]
			key := delta.ID
			if key == "" && delta.Index != nil {
				key = fmt.Sprintf("idx-%d", *delta.Index)
			}
			existing, ok := toolCallsByKey[key]
			if !ok {
				tc := delta
				toolCallsByKey[key] = &tc
				order = append(order, key)
				continue
			}
			existing.Function.Arguments += delta.Function.Arguments
			if existing.Function.Name == "" {
				existing.Function.Name = delta.Function.Name
			}
			if existing.ID == "" {
				existing.ID = delta.ID
			}
		}
	}

	toolCalls := make([]schema.ToolCall, 0, len(order))
	for _, key := range order {
		toolCalls = append(toolCalls, *toolCallsByKey[key])
	}

	return content, toolCalls, nil
}
