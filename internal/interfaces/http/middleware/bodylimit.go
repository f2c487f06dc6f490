package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes caps request bodies at 1 MiB. Every write endpoint
// takes a small JSON document; anything bigger is malformed or hostile.
const DefaultMaxBodyBytes int64 = 1 << 20

// BodyLimit rejects requests whose declared length exceeds maxBytes and
// caps streamed bodies at the same limit. A non-positive limit falls back
// to DefaultMaxBodyBytes.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "REQUEST_TOO_LARGE",
					"message": "Request body exceeds the configured limit.",
				},
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
