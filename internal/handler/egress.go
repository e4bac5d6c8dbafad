package handler

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/tkubica12/scalable-ai-chat/internal/service/egress"
)

// EgressHandler exposes GET /stream/{sessionId}/{chatMessageId}.
type EgressHandler struct {
	svc *egress.Service
}

// NewEgressHandler builds an EgressHandler.
func NewEgressHandler(svc *egress.Service) *EgressHandler {
	return &EgressHandler{svc: svc}
}

// Stream handles GET /stream/{sessionId}/{chatMessageId}.
func (h *EgressHandler) Stream(c *gin.Context) {
	sessionID := c.Param("sessionId")
	chatMessageID := c.Param("chatMessageId")

	events, err := h.svc.Stream(c.Request.Context(), sessionID, chatMessageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if ev.Err != nil {
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", ev.Err.Error())
				return false
			}
			if ev.End {
				fmt.Fprint(w, "data: __END__\n\n")
				return false
			}
			fmt.Fprintf(w, "data: {\"token\": %q}\n\n", ev.Token)
			return true
		}
	})
}
