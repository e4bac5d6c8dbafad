package cmd

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tkubica12/scalable-ai-chat/internal/handler"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/jwt"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/llm"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/mongodb"
	"github.com/tkubica12/scalable-ai-chat/internal/repository"
	"github.com/tkubica12/scalable-ai-chat/internal/server"
	"github.com/tkubica12/scalable-ai-chat/internal/server/middleware"
	"github.com/tkubica12/scalable-ai-chat/internal/service/memoryreader"
)

var serveMemoryReaderCmd = &cobra.Command{
	Use:   "memory-reader",
	Short: "Run the Memory Reader HTTP component",
	RunE:  runServeMemoryReader,
}

func init() {
	serveCmd.AddCommand(serveMemoryReaderCmd)
}

func runServeMemoryReader(cmd *cobra.Command, args []string) error {
	c := GetConfig()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	mongoClient, err := mongodb.New(&c.Store)
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer mongoClient.Close(context.Background())

	profiles := repository.NewProfileRepo(mongoClient.Database(), &c.Store)
	summaries := repository.NewSummaryRepo(mongoClient.Database(), &c.Store)

	embedder, err := llm.NewEmbedder(ctx, &c.LLM)
	if err != nil {
		return fmt.Errorf("build embedder: %w", err)
	}

	svc := memoryreader.New(profiles, summaries, embedder)
	h := handler.NewMemoryReaderHandler(svc)
	verifier := jwt.NewVerifier(c.Auth.JWTSecret)

	srv := server.New(&c.Server, func(engine *gin.Engine) {
		users := engine.Group("/users/:userId", middleware.Identity(verifier, c.Auth.RequireBearer))
		users.GET("/memories", h.GetProfile)
		users.DELETE("/memories", h.DeleteProfile)
		users.POST("/conversations/search", h.Search)
	})

	return srv.Run(ctx)
}
