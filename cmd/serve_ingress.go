package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tkubica12/scalable-ai-chat/internal/handler"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/bus"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/logger"
	"github.com/tkubica12/scalable-ai-chat/internal/server"
	"github.com/tkubica12/scalable-ai-chat/internal/service/ingress"
)

var serveIngressCmd = &cobra.Command{
	Use:   "ingress",
	Short: "Run the Ingress HTTP component",
	RunE:  runServeIngress,
}

func init() {
	serveCmd.AddCommand(serveIngressCmd)
}

func runServeIngress(cmd *cobra.Command, args []string) error {
	c := GetConfig()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	log := logger.Get()

	publisher, err := bus.NewPublisher(c.Bus, log)
	if err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}
	defer publisher.Close()

	directory := ingress.NewStaticDirectory(c.Ingress.KnownUsers)
	svc := ingress.New(publisher, directory, c.Bus)
	h := handler.NewIngressHandler(svc)

	srv := server.New(&c.Server, func(engine *gin.Engine) {
		engine.POST("/session/start", h.StartSession)
		engine.POST("/chat", h.SubmitChat)
	})

	ctx, cancel := signalContext()
	defer cancel()

	return srv.Run(ctx)
}
