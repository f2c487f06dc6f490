package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/loanbook/backend/internal/domain/shared"
)

// IdempotencyKeyHeader is the request header carrying the client's
// idempotency key
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency rejects replays of mutating requests that carry an
// Idempotency-Key header. The key is scoped to method and route, so the
// same key may be reused across different operations. Requests without the
// header pass through unchecked; a store failure also lets the request
// through rather than blocking payment traffic on an unavailable Redis.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || store == nil {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		scoped := c.Request.Method + ":" + c.FullPath() + ":" + key
		fresh, err := store.MarkProcessed(c.Request.Context(), scoped, cfg.TTL)
		if err != nil {
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DUPLICATE_REQUEST",
					"message": "A request with this idempotency key was already processed.",
				},
			})
			return
		}

		c.Next()
	}
}
