// Package auth gates the API behind a static shared secret. There are no
// user accounts; the token is configured once via the environment.
package auth

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware accepts the configured token via "Authorization: Bearer" or
// "X-API-Key". Health checks and loopback clients are always allowed, so a
// local UI keeps working with no token configured on either side. An empty
// token disables the gate entirely.
func Middleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" || c.Request.URL.Path == "/api/health" || isLoopback(c.ClientIP()) {
			c.Next()
			return
		}

		if bearerToken(c.GetHeader("Authorization")) == token || c.GetHeader("X-API-Key") == token {
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		c.Abort()
	}
}

func bearerToken(h string) string {
	if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("Bearer "):])
}

func isLoopback(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}
