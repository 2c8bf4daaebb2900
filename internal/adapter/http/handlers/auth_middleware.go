package handlers

import (
	"crypto/subtle"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerAuth accepts requests whose Authorization header carries one of tokens.
// With no tokens configured every request is rejected.
func BearerAuth(tokens []string) gin.HandlerFunc {
	allowed := make([][]byte, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			allowed = append(allowed, []byte(t))
		}
	}

	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || !tokenAllowed(allowed, []byte(strings.TrimSpace(token))) {
			log.Printf("[auth][middleware] rejected path=%s", c.FullPath())
			c.AbortWithStatusJSON(errUnauthorized.HTTPStatus, errUnauthorized.ToHTTPError())
			return
		}
		c.Next()
	}
}

func tokenAllowed(allowed [][]byte, token []byte) bool {
	if len(token) == 0 {
		return false
	}
	for _, a := range allowed {
		if subtle.ConstantTimeCompare(a, token) == 1 {
			return true
		}
	}
	return false
}
