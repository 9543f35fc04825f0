package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "worldbest-ai-api/pkg/errors"
)

// identity 从 gin 上下文提取认证中间件注入的租户与用户身份
func identity(c *gin.Context) (tenantID, userID string, err error) {
	tenantID = c.GetString("tenant_id")
	userID = c.GetString("user_id")
	if tenantID == "" || userID == "" {
		return "", "", apperrors.ErrUnauthorized
	}
	return tenantID, userID, nil
}
