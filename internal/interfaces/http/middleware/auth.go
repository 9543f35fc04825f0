package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"worldbest-ai-api/internal/interfaces/http/dto"
	apperrors "worldbest-ai-api/pkg/errors"
	"worldbest-ai-api/pkg/logger"
	"worldbest-ai-api/pkg/utils"
)

// AuthConfig 认证配置
type AuthConfig struct {
	// Secret JWT 密钥
	Secret string
	// Issuer JWT 签发者
	Issuer string
	// SkipPaths 跳过认证的路径
	SkipPaths []string
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}

// Auth JWT 认证中间件，解析 Bearer Token 并注入租户/用户身份
func Auth(cfg AuthConfig) gin.HandlerFunc {
	jwtManager := utils.NewJWTManager(cfg.Secret, cfg.Issuer)

	skipMap := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			dto.AbortError(c, apperrors.ErrTokenMissing)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			dto.AbortError(c, apperrors.ErrTokenInvalid.WithDetail("authorization 头格式错误"))
			return
		}

		claims, err := jwtManager.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				dto.AbortError(c, apperrors.ErrTokenExpired)
				return
			}
			dto.AbortError(c, apperrors.ErrTokenInvalid)
			return
		}
		if claims.Type != "access" {
			dto.AbortError(c, apperrors.ErrTokenInvalid.WithDetail("token 类型错误"))
			return
		}

		c.Set("tenant_id", claims.TenantID)
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		ctx := logger.WithContext(c.Request.Context(), logger.TenantIDKey, claims.TenantID)
		ctx = logger.WithContext(ctx, logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
