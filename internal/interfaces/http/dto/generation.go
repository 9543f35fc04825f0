package dto

import (
	"encoding/json"
	"time"

	"worldbest-ai-api/internal/application/assembly"
	"worldbest-ai-api/internal/domain/entity"
)

// ContextRefDTO 显式上下文引用
type ContextRefDTO struct {
	Type   string   `json:"type" binding:"required"`
	ID     string   `json:"id" binding:"required"`
	Fields []string `json:"fields,omitempty"`
}

// GenerationParamsDTO 生成参数覆盖项
type GenerationParamsDTO struct {
	MaxTokens        *int     `json:"max_tokens,omitempty" binding:"omitempty,gt=0"`
	Temperature      *float64 `json:"temperature,omitempty" binding:"omitempty,gte=0,lte=2"`
	TopP             *float64 `json:"top_p,omitempty" binding:"omitempty,gt=0,lte=1"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Deterministic    bool     `json:"deterministic,omitempty"`
	Stream           bool     `json:"stream,omitempty"`
	Length           string   `json:"length,omitempty" binding:"omitempty,oneof=short medium long"`
	StyleIntensity   string   `json:"style_intensity,omitempty" binding:"omitempty,oneof=subtle moderate pronounced"`
	ModelOverride    string   `json:"model_override,omitempty"`
	Instruction      string   `json:"instruction,omitempty"`
}

// GenerateRequest 生成请求体
type GenerateRequest struct {
	ProjectID       string              `json:"project_id" binding:"required,uuid"`
	Intent          string              `json:"intent" binding:"required"`
	Persona         string              `json:"persona" binding:"required"`
	ContextRefs     []ContextRefDTO     `json:"context_refs,omitempty"`
	Params          GenerationParamsDTO `json:"params,omitempty"`
	SafetyOverrides json.RawMessage     `json:"safety_overrides,omitempty"`
	IdempotencyKey  string              `json:"idempotency_key,omitempty" binding:"omitempty,max=128"`
}

// ToRefs 转换显式引用列表
func (r *GenerateRequest) ToRefs() []assembly.ContextRef {
	if len(r.ContextRefs) == 0 {
		return nil
	}
	refs := make([]assembly.ContextRef, 0, len(r.ContextRefs))
	for _, ref := range r.ContextRefs {
		refs = append(refs, assembly.ContextRef{
			Type:   entity.ItemType(ref.Type),
			ID:     ref.ID,
			Fields: ref.Fields,
		})
	}
	return refs
}

// ToParams 转换生成参数
func (r *GenerateRequest) ToParams() entity.GenerationParams {
	return entity.GenerationParams{
		MaxTokens:        r.Params.MaxTokens,
		Temperature:      r.Params.Temperature,
		TopP:             r.Params.TopP,
		FrequencyPenalty: r.Params.FrequencyPenalty,
		PresencePenalty:  r.Params.PresencePenalty,
		Deterministic:    r.Params.Deterministic,
		Stream:           r.Params.Stream,
		Length:           r.Params.Length,
		StyleIntensity:   r.Params.StyleIntensity,
		ModelOverride:    r.Params.ModelOverride,
		Instruction:      r.Params.Instruction,
	}
}

// GenerationResponse 生成记录响应体
type GenerationResponse struct {
	ID               string          `json:"id"`
	ProjectID        string          `json:"project_id"`
	Persona          string          `json:"persona"`
	Intent           string          `json:"intent"`
	Provider         string          `json:"provider"`
	Model            string          `json:"model"`
	Content          string          `json:"content"`
	FinishReason     string          `json:"finish_reason"`
	Usage            UsageDTO        `json:"usage"`
	EstimatedCost    float64         `json:"estimated_cost"`
	ContextHash      string          `json:"context_hash"`
	ContextItemCount int             `json:"context_item_count"`
	SafetyOverrides  json.RawMessage `json:"safety_overrides,omitempty"`
	Cached           bool            `json:"cached"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	CreatedAt        time.Time       `json:"created_at"`
}

// UsageDTO Token 用量
type UsageDTO struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// FromGenerationRecord 从领域实体构造响应体
func FromGenerationRecord(record *entity.GenerationRecord) *GenerationResponse {
	return &GenerationResponse{
		ID:               record.ID,
		ProjectID:        record.ProjectID,
		Persona:          record.Persona,
		Intent:           string(record.Intent),
		Provider:         record.Provider,
		Model:            record.Model,
		Content:          record.Content,
		FinishReason:     record.FinishReason,
		Usage: UsageDTO{
			PromptTokens:     record.Usage.PromptTokens,
			CompletionTokens: record.Usage.CompletionTokens,
			TotalTokens:      record.Usage.TotalTokens,
		},
		EstimatedCost:    record.EstimatedCost,
		ContextHash:      record.ContextHash,
		ContextItemCount: record.ContextItemCount,
		SafetyOverrides:  record.SafetyOverrides,
		Cached:           record.Cached,
		ProcessingTimeMs: record.ProcessingTimeMs,
		CreatedAt:        record.CreatedAt,
	}
}

// FromGenerationRecords 批量转换
func FromGenerationRecords(records []*entity.GenerationRecord) []*GenerationResponse {
	out := make([]*GenerationResponse, 0, len(records))
	for _, record := range records {
		out = append(out, FromGenerationRecord(record))
	}
	return out
}
