package dto

import (
	"worldbest-ai-api/internal/application/persona"
)

// PersonaResponse 人设信息响应体，不含系统提示词
type PersonaResponse struct {
	Name               string   `json:"name"`
	Temperature        float64  `json:"temperature"`
	MaxTokens          int      `json:"max_tokens"`
	PreferredProviders []string `json:"preferred_providers"`
	ContextPriority    []string `json:"context_priority"`
}

// FromPersonaConfig 从人设配置构造响应体
func FromPersonaConfig(cfg *persona.Config) *PersonaResponse {
	priority := make([]string, 0, len(cfg.ContextPriority))
	for _, t := range cfg.ContextPriority {
		priority = append(priority, string(t))
	}
	return &PersonaResponse{
		Name:               cfg.Name,
		Temperature:        cfg.Temperature,
		MaxTokens:          cfg.MaxTokens,
		PreferredProviders: cfg.PreferredProviders,
		ContextPriority:    priority,
	}
}
