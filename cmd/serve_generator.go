package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkubica12/scalable-ai-chat/internal/pkg/bus"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/cache"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/llm"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/logger"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/mongodb"
	"github.com/tkubica12/scalable-ai-chat/internal/repository"
	"github.com/tkubica12/scalable-ai-chat/internal/service/generator"
)

var serveGeneratorCmd = &cobra.Command{
	Use:   "generator",
	Short: "Run the Generator component",
	RunE:  runServeGenerator,
}

func init() {
	serveCmd.AddCommand(serveGeneratorCmd)
}

func runServeGenerator(cmd *cobra.Command, args []string) error {
	c := GetConfig()
	log := logger.Get()

	ctx, cancel := signalContext()
	defer cancel()

	publisher, err := bus.NewPublisher(c.Bus, log)
	if err != nil {
		return fmt.Errorf("connect publisher to bus: %w", err)
	}
	defer publisher.Close()

	subscriber, err := bus.NewSubscriber(c.Bus, bus.SubscriberOptions{
		QueueGroup:     c.Bus.GeneratorQueueGroup,
		AckWaitTimeout: c.Bus.AckWaitTimeout,
		MaxDeliver:     c.Bus.MaxDeliver,
		MaxAckPending:  c.Bus.MaxAckPending,
	}, log)
	if err != nil {
		return fmt.Errorf("connect subscriber to bus: %w", err)
	}
	defer subscriber.Close()

	redisCache, err := cache.New(&c.Cache)
	if err != nil {
		return fmt.Errorf("connect to hot cache: %w", err)
	}
	defer redisCache.Close()

	mongoClient, err := mongodb.New(&c.Store)
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer mongoClient.Close(context.Background())

	if err := mongodb.EnsureIndexes(ctx, mongoClient.Database(), &c.Store); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	history := repository.NewConversationRepo(mongoClient.Database(), &c.Store)

	chatModel, err := llm.NewChatModel(ctx, &c.LLM)
	if err != nil {
		return fmt.Errorf("build chat model: %w", err)
	}

	memory := generator.NewMemoryClient(c.Generator.MemoryAPIEndpoint, nil)

	svc := generator.New(c.Generator, c.Bus, &c.LLM, c.Cache.ConversationTTL, subscriber, publisher, redisCache, history, chatModel, memory, log)

	return runWorker(ctx, c.Generator.ShutdownGrace, svc.Run)
}
