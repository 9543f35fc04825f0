package handler

import (
	"github.com/gin-gonic/gin"

	"worldbest-ai-api/internal/application/assembly"
	"worldbest-ai-api/internal/infrastructure/persistence/milvus"
	"worldbest-ai-api/internal/interfaces/http/dto"
	apperrors "worldbest-ai-api/pkg/errors"
)

// RetrievalHandler 相似条目检索处理器，向量增强关闭时返回 503
type RetrievalHandler struct {
	embedder assembly.Embedder
	vectors  *milvus.Repository
}

// NewRetrievalHandler 创建检索处理器，embedder 和 vectors 均可为 nil
func NewRetrievalHandler(embedder assembly.Embedder, vectors *milvus.Repository) *RetrievalHandler {
	return &RetrievalHandler{embedder: embedder, vectors: vectors}
}

// SimilarItems 按自然语言查询检索项目内相似的上下文条目
// GET /v1/projects/:pid/context/similar?q=...&top_k=5
func (h *RetrievalHandler) SimilarItems(c *gin.Context) {
	tenantID, _, err := identity(c)
	if err != nil {
		dto.Error(c, err)
		return
	}
	if h.embedder == nil || h.vectors == nil {
		dto.Error(c, apperrors.ErrServiceUnavailable.WithDetail("向量检索未启用"))
		return
	}

	query := c.Query("q")
	if query == "" {
		dto.Error(c, apperrors.ErrInvalidParam.WithDetail("缺少查询参数 q"))
		return
	}
	topK := queryInt(c, "top_k", 5)
	if topK < 1 || topK > 50 {
		topK = 5
	}

	vec, err := h.embedder.EmbedText(c.Request.Context(), query)
	if err != nil {
		dto.Error(c, apperrors.ErrServiceUnavailable.WithDetail("查询向量化失败").WithError(err))
		return
	}

	items, err := h.vectors.SearchContextItems(c.Request.Context(), tenantID, c.Param("pid"), vec, topK)
	if err != nil {
		dto.Error(c, apperrors.ErrServiceUnavailable.WithDetail("向量检索失败").WithError(err))
		return
	}
	dto.Success(c, dto.FromSimilarItems(items))
}
