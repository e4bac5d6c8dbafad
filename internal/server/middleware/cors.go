package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS allows the web UI (an external collaborator per spec.md §1) to
// call these HTTP surfaces from a browser origin. Not present in the
// teacher despite being referenced by its server setup; authored fresh
// in generic gin-middleware idiom.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
