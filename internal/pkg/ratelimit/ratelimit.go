// Package ratelimit throttles API requests per caller.
package ratelimit

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/response"
)

// Limiter reports whether one more request for key fits in its budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// clientKey prefers the authenticated user over the client IP.
func clientKey(c *gin.Context) string {
	if id := c.GetString("userID"); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}

// Middleware rejects over-budget callers with 429. When the limiter itself
// fails the request passes if failOpen is set and gets 503 otherwise.
func Middleware(l Limiter, logger *zap.Logger, failOpen bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)
		ok, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter error", zap.String("key", key), zap.Error(err))
			if failOpen {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.ErrorResponse{Error: "rate limiter unavailable"})
			return
		}
		if !ok {
			logger.Warn("rate limit exceeded", zap.String("key", key))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{Error: "rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}
