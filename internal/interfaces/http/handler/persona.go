package handler

import (
	"github.com/gin-gonic/gin"

	"worldbest-ai-api/internal/application/persona"
	"worldbest-ai-api/internal/interfaces/http/dto"
)

// PersonaHandler 人设查询处理器
type PersonaHandler struct {
	registry *persona.Registry
}

// NewPersonaHandler 创建人设查询处理器
func NewPersonaHandler(registry *persona.Registry) *PersonaHandler {
	return &PersonaHandler{registry: registry}
}

// List 列出已注册的人设
// GET /v1/personas
func (h *PersonaHandler) List(c *gin.Context) {
	names := h.registry.Names()
	out := make([]*dto.PersonaResponse, 0, len(names))
	for _, name := range names {
		cfg, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		out = append(out, dto.FromPersonaConfig(cfg))
	}
	dto.Success(c, out)
}
