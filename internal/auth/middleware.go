package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TriggerTokenMiddleware guards the pipeline trigger with a bearer token
// checked against a bcrypt hash. An empty hash leaves the route open.
// limiter may be nil.
func TriggerTokenMiddleware(tokenHash string, limiter *RateLimiter) gin.HandlerFunc {
	if tokenHash == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()

		if limiter != nil {
			if allowed, retryAfter := limiter.Allow(ip); !allowed {
				c.Header("Retry-After", retryAfter.String())
				c.String(http.StatusTooManyRequests, ">>> FAILED :too many failed token attempts")
				c.Abort()
				return
			}
		}

		token := bearerToken(c)
		if token == "" {
			c.String(http.StatusUnauthorized, ">>> FAILED :authentication required")
			c.Abort()
			return
		}

		if err := CheckToken(token, tokenHash); err != nil {
			if err != ErrInvalidToken {
				log.Printf("Trigger token check failed: %v", err)
			}
			if limiter != nil {
				if locked, _ := limiter.RecordFailure(ip); locked {
					log.Printf("Trigger: locking out %s after repeated invalid tokens", ip)
				}
			}
			c.String(http.StatusUnauthorized, ">>> FAILED :%v", ErrInvalidToken)
			c.Abort()
			return
		}

		if limiter != nil {
			limiter.RecordSuccess(ip)
		}
		c.Next()
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// Query parameters are not accepted since they end up in access logs.
func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
