// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "worldbest-ai-api/pkg/errors"
)

// Response 统一成功响应结构
type Response[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Meta    *PageMeta `json:"meta,omitempty"`
	TraceID string    `json:"trace_id,omitempty"`
}

// PageMeta 分页元数据
type PageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ErrorBody 错误信息体
type ErrorBody struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// Success 返回成功响应
func Success[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, Response[T]{
		Success: true,
		Data:    data,
		TraceID: c.GetString("request_id"),
	})
}

// Created 返回创建成功响应 (201)
func Created[T any](c *gin.Context, data T) {
	c.JSON(http.StatusCreated, Response[T]{
		Success: true,
		Data:    data,
		TraceID: c.GetString("request_id"),
	})
}

// SuccessWithPage 返回带分页的成功响应
func SuccessWithPage[T any](c *gin.Context, data T, meta *PageMeta) {
	c.JSON(http.StatusOK, Response[T]{
		Success: true,
		Data:    data,
		Meta:    meta,
		TraceID: c.GetString("request_id"),
	})
}

// Error 按应用错误类型返回结构化错误响应
func Error(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:      string(appErr.Code),
			Message:   appErr.Message,
			Details:   appErr.Detail,
			Timestamp: time.Now().UTC(),
		},
		TraceID: c.GetString("request_id"),
	})
}

// AbortError 终止请求并返回结构化错误响应
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
