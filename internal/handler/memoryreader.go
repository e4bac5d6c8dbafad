package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/apperr"
	"github.com/tkubica12/scalable-ai-chat/internal/service/memoryreader"
)

// MemoryReaderHandler exposes the profile and semantic-search routes.
type MemoryReaderHandler struct {
	svc *memoryreader.Service
}

// NewMemoryReaderHandler builds a MemoryReaderHandler.
func NewMemoryReaderHandler(svc *memoryreader.Service) *MemoryReaderHandler {
	return &MemoryReaderHandler{svc: svc}
}

// GetProfile handles GET /users/{userId}/memories.
func (h *MemoryReaderHandler) GetProfile(c *gin.Context) {
	userID := c.Param("userId")

	profile, err := h.svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteProfile handles DELETE /users/{userId}/memories.
func (h *MemoryReaderHandler) DeleteProfile(c *gin.Context) {
	userID := c.Param("userId")

	if err := h.svc.DeleteProfile(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search handles POST /users/{userId}/conversations/search.
func (h *MemoryReaderHandler) Search(c *gin.Context) {
	userID := c.Param("userId")

	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	results, err := h.svc.Search(c.Request.Context(), userID, req.Query, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SearchResponse{Results: results})
}
