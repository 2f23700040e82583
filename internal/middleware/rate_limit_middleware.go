package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests: максимальное количество запросов за Window
	MaxRequests int
	// Window: временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix: префикс для ключей в Redis
	KeyPrefix string
}

// LoginRateLimitConfig лимит для login (защита от brute-force)
func LoginRateLimitConfig(perMinute int) RateLimitConfig {
	if perMinute <= 0 {
		perMinute = 5
	}
	return RateLimitConfig{
		MaxRequests: perMinute,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:auth:login",
	}
}

// SubmitRateLimitConfig лимит отправок ответов на одного студента
func SubmitRateLimitConfig(perMinute int) RateLimitConfig {
	if perMinute <= 0 {
		perMinute = 10
	}
	return RateLimitConfig{
		MaxRequests: perMinute,
		Window:      1 * time.Minute,
		KeyPrefix:   "rl:submit",
	}
}

// RateLimiter создаёт middleware для rate limiting на основе Redis
type RateLimiter struct {
	redisClient redis.UniversalClient
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(redisClient redis.UniversalClient) *RateLimiter {
	return &RateLimiter{redisClient: redisClient}
}

// Limit ограничивает запросы по IP + endpoint path
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return rl.limit(cfg, func(c *gin.Context) string {
		path := c.FullPath() // Gin route pattern, e.g. "/api/auth/login"
		if path == "" {
			path = c.Request.URL.Path
		}
		return fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, c.ClientIP(), path)
	})
}

// LimitByUser ограничивает запросы по user_id из контекста.
// Должен стоять после AuthMiddleware; без user_id используется IP.
func (rl *RateLimiter) LimitByUser(cfg RateLimitConfig) gin.HandlerFunc {
	return rl.limit(cfg, func(c *gin.Context) string {
		if userID, ok := c.Get(ContextUserID); ok {
			return fmt.Sprintf("%s:user:%v", cfg.KeyPrefix, userID)
		}
		return fmt.Sprintf("%s:ip:%s", cfg.KeyPrefix, c.ClientIP())
	})
}

func (rl *RateLimiter) limit(cfg RateLimitConfig, keyFn func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			// При ошибке Redis пропускаем запрос (fail-open), но логируем
			log.Printf("[RateLimiter] Redis error for key %s: %v. Allowing request (fail-open).", key, err)
			c.Next()
			return
		}

		// Первый запрос в окне: устанавливаем TTL
		if count == 1 {
			if err := rl.redisClient.Expire(ctx, key, cfg.Window).Err(); err != nil {
				log.Printf("[RateLimiter] Failed to set TTL for key %s: %v", key, err)
			}
		}

		remaining := cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}

		ttl, _ := rl.redisClient.TTL(ctx, key).Result()
		retryAfter := int(ttl.Seconds())
		if retryAfter < 0 {
			retryAfter = int(cfg.Window.Seconds())
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", retryAfter))

		if int(count) > cfg.MaxRequests {
			log.Printf("[RateLimiter] Rate limit exceeded for key=%s. Count=%d, Limit=%d", key, count, cfg.MaxRequests)

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Too many requests. Please try again later.",
				"error_type":  "rate_limited",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
