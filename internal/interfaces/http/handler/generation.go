package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"worldbest-ai-api/internal/application/generation"
	"worldbest-ai-api/internal/domain/entity"
	"worldbest-ai-api/internal/domain/repository"
	"worldbest-ai-api/internal/interfaces/http/dto"
	apperrors "worldbest-ai-api/pkg/errors"
)

// GenerationHandler 生成接口处理器
type GenerationHandler struct {
	orchestrator *generation.Orchestrator
}

// NewGenerationHandler 创建生成接口处理器
func NewGenerationHandler(orchestrator *generation.Orchestrator) *GenerationHandler {
	return &GenerationHandler{orchestrator: orchestrator}
}

// Generate 发起一次生成
// POST /v1/generations
func (h *GenerationHandler) Generate(c *gin.Context) {
	tenantID, userID, err := identity(c)
	if err != nil {
		dto.Error(c, err)
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return
	}

	// 请求头优先于请求体中的幂等键
	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		idempotencyKey = req.IdempotencyKey
	}

	record, err := h.orchestrator.Generate(c.Request.Context(), &generation.GenerateInput{
		TenantID:        tenantID,
		UserID:          userID,
		ProjectID:       req.ProjectID,
		Intent:          entity.GenerationIntent(req.Intent),
		Persona:         req.Persona,
		ContextRefs:     req.ToRefs(),
		Params:          req.ToParams(),
		SafetyOverrides: req.SafetyOverrides,
		IdempotencyKey:  idempotencyKey,
	})
	if err != nil {
		dto.Error(c, err)
		return
	}

	if record.Cached {
		dto.Success(c, dto.FromGenerationRecord(record))
		return
	}
	dto.Created(c, dto.FromGenerationRecord(record))
}

// Get 查询单条生成记录
// GET /v1/generations/:gid
func (h *GenerationHandler) Get(c *gin.Context) {
	tenantID, _, err := identity(c)
	if err != nil {
		dto.Error(c, err)
		return
	}

	record, err := h.orchestrator.GetGeneration(c.Request.Context(), tenantID, c.Param("gid"))
	if err != nil {
		dto.Error(c, err)
		return
	}
	dto.Success(c, dto.FromGenerationRecord(record))
}

// ListByProject 按项目分页查询生成记录
// GET /v1/projects/:pid/generations
func (h *GenerationHandler) ListByProject(c *gin.Context) {
	tenantID, _, err := identity(c)
	if err != nil {
		dto.Error(c, err)
		return
	}

	page := &repository.Pagination{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	result, err := h.orchestrator.ListGenerations(c.Request.Context(), tenantID, c.Param("pid"), page)
	if err != nil {
		dto.Error(c, err)
		return
	}

	totalPages := int(result.Total) / result.PageSize
	if int(result.Total)%result.PageSize > 0 {
		totalPages++
	}
	dto.SuccessWithPage(c, dto.FromGenerationRecords(result.Items), &dto.PageMeta{
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: totalPages,
	})
}

// queryInt 解析整型查询参数，非法值回退默认值
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
