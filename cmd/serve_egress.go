package cmd

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tkubica12/scalable-ai-chat/internal/handler"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/cache"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/logger"
	"github.com/tkubica12/scalable-ai-chat/internal/server"
	"github.com/tkubica12/scalable-ai-chat/internal/service/egress"
)

var serveEgressCmd = &cobra.Command{
	Use:   "egress",
	Short: "Run the Egress SSE-streaming component",
	RunE:  runServeEgress,
}

func init() {
	serveCmd.AddCommand(serveEgressCmd)
}

func runServeEgress(cmd *cobra.Command, args []string) error {
	c := GetConfig()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	log := logger.Get()

	redisCache, err := cache.New(&c.Cache)
	if err != nil {
		return fmt.Errorf("connect to hot cache: %w", err)
	}
	defer redisCache.Close()

	svc := egress.New(c.Bus, redisCache, log, 5*time.Minute)
	h := handler.NewEgressHandler(svc)

	// http.Server.WriteTimeout is set once at the start of the request and
	// is never reset by later writes, so it would kill an SSE stream still
	// open past server.write_timeout even while tokens are actively
	// flowing. Idle-close is handled entirely by egress.Service's own
	// ticker instead.
	c.Server.WriteTimeout = 0

	srv := server.New(&c.Server, func(engine *gin.Engine) {
		engine.GET("/stream/:sessionId/:chatMessageId", h.Stream)
	})

	ctx, cancel := signalContext()
	defer cancel()

	return srv.Run(ctx)
}
