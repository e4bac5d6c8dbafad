package cmd

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tkubica12/scalable-ai-chat/internal/handler"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/jwt"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/mongodb"
	"github.com/tkubica12/scalable-ai-chat/internal/repository"
	"github.com/tkubica12/scalable-ai-chat/internal/server"
	"github.com/tkubica12/scalable-ai-chat/internal/server/middleware"
	"github.com/tkubica12/scalable-ai-chat/internal/service/historyreader"
)

var serveHistoryReaderCmd = &cobra.Command{
	Use:   "history-reader",
	Short: "Run the History Reader HTTP component",
	RunE:  runServeHistoryReader,
}

func init() {
	serveCmd.AddCommand(serveHistoryReaderCmd)
}

func runServeHistoryReader(cmd *cobra.Command, args []string) error {
	c := GetConfig()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	mongoClient, err := mongodb.New(&c.Store)
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer mongoClient.Close(context.Background())

	history := repository.NewConversationRepo(mongoClient.Database(), &c.Store)
	svc := historyreader.New(history)
	h := handler.NewHistoryReaderHandler(svc)
	verifier := jwt.NewVerifier(c.Auth.JWTSecret)

	srv := server.New(&c.Server, func(engine *gin.Engine) {
		users := engine.Group("/users/:userId", middleware.Identity(verifier, c.Auth.RequireBearer))
		users.GET("/conversations", h.ListConversations)
		users.GET("/conversations/:sessionId/messages", h.GetMessages)
		users.PUT("/conversations/:sessionId/title", h.SetTitle)
	})

	ctx, cancel := signalContext()
	defer cancel()

	return srv.Run(ctx)
}
