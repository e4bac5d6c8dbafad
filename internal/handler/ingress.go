package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tkubica12/scalable-ai-chat/internal/model"
	"github.com/tkubica12/scalable-ai-chat/internal/pkg/apperr"
	"github.com/tkubica12/scalable-ai-chat/internal/service/ingress"
)

// IngressHandler exposes POST /session/start and POST /chat.
type IngressHandler struct {
	svc *ingress.Service
}

// NewIngressHandler builds an IngressHandler.
func NewIngressHandler(svc *ingress.Service) *IngressHandler {
	return &IngressHandler{svc: svc}
}

// StartSession handles POST /session/start.
func (h *IngressHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	sessionID, err := h.svc.StartSession(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.StartSessionResponse{SessionID: sessionID})
}

// SubmitChat handles POST /chat.
func (h *IngressHandler) SubmitChat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}

	if err := h.svc.SubmitChat(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}
