package throttle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"auction-service/internal/identity"
	"auction-service/internal/metrics"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimited      = errors.New("too many bids, slow down")
	ErrRedisUnavailable = errors.New("rate limiter backend unavailable")
)

const keyPrefix = "auction:bidrate:"

// Limiter caps bid submissions per bidder with a fixed-window Redis counter
type Limiter struct {
	redis  redis.UniversalClient
	limit  int
	window time.Duration
}

// New creates a Limiter allowing limit submissions per window
func New(client redis.UniversalClient, limit int, window time.Duration) *Limiter {
	return &Limiter{redis: client, limit: limit, window: window}
}

// Allow counts one submission for bidderID and returns ErrRateLimited once
// the window budget is spent.
func (l *Limiter) Allow(ctx context.Context, bidderID string) error {
	key := keyPrefix + bidderID

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// first hit opens the window
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count > int64(l.limit) {
		return ErrRateLimited
	}
	return nil
}

// Middleware applies the limiter to the authenticated caller. Backend failures
// let the request through.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity.FromContext(c)
		if !ok {
			c.Next()
			return
		}

		err := l.Allow(c.Request.Context(), id.UserID)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, ErrRateLimited):
			metrics.RecordThrottled()
			utils.Warn("bid throttled", map[string]any{"user_id": id.UserID})
			utils.JSONError(c, http.StatusTooManyRequests, err, "rate limit exceeded")
			c.Abort()
		default:
			utils.Error("bid throttle unavailable", map[string]any{"error": err.Error()})
			c.Next()
		}
	}
}
