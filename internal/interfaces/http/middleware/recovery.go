package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"worldbest-ai-api/internal/interfaces/http/dto"
	apperrors "worldbest-ai-api/pkg/errors"
	"worldbest-ai-api/pkg/logger"
)

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", err),
					"stack", stack,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Success: false,
					Error: dto.ErrorBody{
						Code:      string(apperrors.CodeInternalError),
						Message:   "internal server error",
						Timestamp: time.Now().UTC(),
					},
					TraceID: c.GetString("request_id"),
				})
			}
		}()

		c.Next()
	}
}
