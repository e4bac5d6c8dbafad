package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tkubica12/scalable-ai-chat/internal/pkg/apperr"
	httpresp "github.com/tkubica12/scalable-ai-chat/internal/pkg/http"
)

// respondError maps an apperr.Error (or any error, defaulted to Upstream)
// onto the shared ErrorResponse envelope and HTTP status, per spec.md §7.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	c.AbortWithStatusJSON(status, httpresp.NewErrorResponse(status, err.Error()))
}
