package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Baaaki/inkwell/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bannedIPsKey = "banned_ips"

// RateLimiterConfig defines rate limiting rules
type RateLimiterConfig struct {
	MaxRequests int           // Maximum requests allowed in the window
	Window      time.Duration // Counter lifetime
	BlockTime   time.Duration // Lockout after the budget is exhausted
	Prefix      string        // Key namespace, e.g. "ratelimit:auth"
}

// RateLimiter counts requests per client IP in Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimiterConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RateLimiter {
	if config.Prefix == "" {
		config.Prefix = "ratelimit"
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()

		if banned, _ := rl.IsIPBanned(ctx, clientIP); banned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Your IP address has been banned",
			})
			return
		}

		allowed, retryAfter, err := rl.CheckLimit(ctx, clientIP)
		if err != nil {
			// Fail open
			logger.Log.Warn("Rate limiter unavailable",
				zap.String("ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			seconds := int(retryAfter.Seconds())
			logger.Log.Warn("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Int("retry_after", seconds),
			)
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}

// CheckLimit is a fixed window counter (INCR + EXPIRE). When the budget
// runs out the key is held for BlockTime.
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip string) (bool, time.Duration, error) {
	key := fmt.Sprintf("%s:%s", rl.config.Prefix, ip)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}

	// First request opens the window
	if count == 1 {
		if err := rl.redis.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count <= int64(rl.config.MaxRequests) {
		return true, 0, nil
	}

	// Crossing the limit starts the block period
	if count == int64(rl.config.MaxRequests)+1 && rl.config.BlockTime > 0 {
		if err := rl.redis.Expire(ctx, key, rl.config.BlockTime).Err(); err != nil {
			return false, 0, err
		}
		return false, rl.config.BlockTime, nil
	}

	ttl, err := rl.redis.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = rl.config.Window
	}
	return false, ttl, nil
}

func (rl *RateLimiter) IsIPBanned(ctx context.Context, ip string) (bool, error) {
	return rl.redis.SIsMember(ctx, bannedIPsKey, ip).Result()
}

func (rl *RateLimiter) BanIP(ctx context.Context, ip string) error {
	return rl.redis.SAdd(ctx, bannedIPsKey, ip).Err()
}

func (rl *RateLimiter) UnbanIP(ctx context.Context, ip string) error {
	return rl.redis.SRem(ctx, bannedIPsKey, ip).Err()
}
