package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/redis/go-redis/v9"
)

// QueryRateLimiter caps requests per client IP within a fixed window using
// Redis INCR and EXPIRE. Redis failures let the request through.
func QueryRateLimiter(redisClient redis.UniversalClient, requestsPerWindow int, window time.Duration) gin.HandlerFunc {
	log := logger.GetLogger().Named("rate_limit")

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:query:%s", c.ClientIP())

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)

		if _, err := pipe.Exec(ctx); err != nil {
			log.Warnw("Rate limit check failed, allowing request", "key", key, "error", err)
			c.Next()
			return
		}

		count := incr.Val()
		c.Header("X-RateLimit-Limit", strconv.Itoa(requestsPerWindow))

		if count > int64(requestsPerWindow) {
			ttl, err := redisClient.TTL(ctx, key).Result()
			if err != nil || ttl <= 0 {
				ttl = window
			}
			retryAfter := int(ttl.Seconds())

			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			_ = c.Error(apperrors.RateLimitExceeded("Too many requests. Please try again later.", retryAfter))
			c.Abort()
			return
		}

		remaining := max(requestsPerWindow-int(count), 0)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))

		c.Next()
	}
}
