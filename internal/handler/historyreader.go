package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/apperr"
	"github.com/tkubica12/scalable-ai-chat/internal/service/historyreader"
)

// HistoryReaderHandler exposes the read-only conversation-history routes.
type HistoryReaderHandler struct {
	svc *historyreader.Service
}

// NewHistoryReaderHandler builds a HistoryReaderHandler.
func NewHistoryReaderHandler(svc *historyreader.Service) *HistoryReaderHandler {
	return &HistoryReaderHandler{svc: svc}
}

// ListConversations handles GET /users/{userId}/conversations.
func (h *HistoryReaderHandler) ListConversations(c *gin.Context) {
	userID := c.Param("userId")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	metas, err := h.svc.ListConversations(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metas)
}

// GetMessages handles GET /users/{userId}/conversations/{sessionId}/messages.
func (h *HistoryReaderHandler) GetMessages(c *gin.Context) {
	userID := c.Param("userId")
	sessionID := c.Param("sessionId")

	messages, err := h.svc.GetMessages(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SetTitle handles PUT /users/{userId}/conversations/{sessionId}/title.
func (h *HistoryReaderHandler) SetTitle(c *gin.Context) {
	userID := c.Param("userId")
	sessionID := c.Param("sessionId")

	var req model.RenameTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	if err := h.svc.SetTitle(c.Request.Context(), userID, sessionID, req.Title); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
