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
	"github.com/tkubica12/scalable-ai-chat/internal/service/memorywriter"
)

var serveMemoryWriterCmd = &cobra.Command{
	Use:   "memory-writer",
	Short: "Run the Memory Writer component",
	RunE:  runServeMemoryWriter,
}

func init() {
	serveCmd.AddCommand(serveMemoryWriterCmd)
}

func runServeMemoryWriter(cmd *cobra.Command, args []string) error {
	c := GetConfig()
	log := logger.Get()

	ctx, cancel := signalContext()
	defer cancel()

	subscriber, err := bus.NewSubscriber(c.Bus, bus.SubscriberOptions{
		DurableName:    c.Bus.MemoryWriterDurable,
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

	summaries := repository.NewSummaryRepo(mongoClient.Database(), &c.Store)
	profiles := repository.NewProfileRepo(mongoClient.Database(), &c.Store)

	extractor, err := llm.NewChatModel(ctx, &c.LLM)
	if err != nil {
		return fmt.Errorf("build extraction model: %w", err)
	}

	embedder, err := llm.NewEmbedder(ctx, &c.LLM)
	if err != nil {
		return fmt.Errorf("build embedder: %w", err)
	}

	svc := memorywriter.New(c.Writer, &c.LLM, c.Bus, subscriber, redisCache, extractor, embedder, summaries, profiles, log)

	return runWorker(ctx, c.Writer.ShutdownGrace, svc.Run)
}
