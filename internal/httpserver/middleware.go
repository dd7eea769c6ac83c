package httpserver

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const adminHeader = "X-Admin-Token"

// tokenMatches compares in constant time. An empty expected token never matches.
func tokenMatches(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

// adminMiddleware rejects requests whose admin header does not carry the configured token.
func adminMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tokenMatches(token, c.GetHeader(adminHeader)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}
