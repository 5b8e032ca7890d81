package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/secrethelper/api/pkg/response"
)

// RateLimiter enforces per-user request limits backed by Redis counters
type RateLimiter struct {
	redis *redis.Client
}

// NewRateLimiter creates a rate limiter. A nil client disables limiting.
func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit creates a rate limiting middleware
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.redis == nil {
			return c.Next()
		}

		userID := GetUserID(c)
		if userID == "" {
			return c.Next() // auth middleware rejects anonymous requests
		}

		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, userID)
		ctx := context.Background()

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			// On Redis failure, let the request through
			return c.Next()
		}

		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// HelperLimit returns a rate limiter for helper endpoints (per minute)
func (rl *RateLimiter) HelperLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("helper", maxPerMin, time.Minute)
}

// SongLimit returns a rate limiter for song endpoints (per hour)
func (rl *RateLimiter) SongLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("song", maxPerHour, time.Hour)
}
