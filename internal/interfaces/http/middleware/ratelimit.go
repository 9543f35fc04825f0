package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"worldbest-ai-api/internal/interfaces/http/dto"
	apperrors "worldbest-ai-api/pkg/errors"
	"worldbest-ai-api/pkg/logger"
)

// RateLimiter 限流器抽象
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond int
	Burst             int
	KeyPrefix         string
}

// RateLimit 基于租户维度的滑动窗口限流中间件。
// 限流器自身故障时放行请求，避免存储抖动放大为全站不可用。
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "ratelimit"
	}
	limit := cfg.RequestsPerSecond
	if cfg.Burst > limit {
		limit = cfg.Burst
	}

	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")
		if tenantID == "" {
			tenantID = c.ClientIP()
		}
		key := prefix + ":" + tenantID + ":" + c.Request.URL.Path

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, time.Second)
		if err != nil {
			logger.Warn(c.Request.Context(), "限流检查失败，放行请求", "error", err)
			c.Next()
			return
		}
		if !allowed {
			dto.AbortError(c, apperrors.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
