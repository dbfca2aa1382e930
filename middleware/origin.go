package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Origin validation example: adjust to your own domain allowlist.
func Origin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && c.Request.URL.Path == "/ws" {
			// Header/Cookie checks can be added here; token validation is
			// handled by the gateway handshake itself.
		}
		c.Next()
	}
}
