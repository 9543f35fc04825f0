package entity

import (
	"encoding/json"
	"time"
)

// GenerationIntent 生成意图
type GenerationIntent string

const (
	IntentGenerateScene    GenerationIntent = "generate_scene"
	IntentContinueScene    GenerationIntent = "continue_scene"
	IntentImproveDialogue  GenerationIntent = "improve_dialogue"
	IntentDescribeSetting  GenerationIntent = "describe_setting"
	IntentDevelopCharacter GenerationIntent = "develop_character"
	IntentBrainstorm       GenerationIntent = "brainstorm"
)

// ValidIntent 检查生成意图是否受支持
func ValidIntent(i GenerationIntent) bool {
	switch i {
	case IntentGenerateScene, IntentContinueScene, IntentImproveDialogue,
		IntentDescribeSetting, IntentDevelopCharacter, IntentBrainstorm:
		return true
	}
	return false
}

// GenerationParams 调用方参数，指针字段为空时回落到人设默认值
type GenerationParams struct {
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Deterministic    bool     `json:"deterministic,omitempty"`
	Stream           bool     `json:"stream,omitempty"`
	Length           string   `json:"length,omitempty"`
	StyleIntensity   string   `json:"style_intensity,omitempty"`
	ModelOverride    string   `json:"model_override,omitempty"`
	Instruction      string   `json:"instruction,omitempty"`
}

// TokenUsage Token 用量，来自 Provider 实际返回值
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationRecord 一次生成调用的持久化记录
type GenerationRecord struct {
	ID               string           `json:"id"`
	TenantID         string           `json:"tenant_id"`
	ProjectID        string           `json:"project_id"`
	UserID           string           `json:"user_id"`
	Persona          string           `json:"persona"`
	Intent           GenerationIntent `json:"intent"`
	Provider         string           `json:"provider"`
	Model            string           `json:"model"`
	Content          string           `json:"content"`
	FinishReason     string           `json:"finish_reason"`
	Usage            TokenUsage       `json:"usage"`
	EstimatedCost    float64          `json:"estimated_cost"`
	ContextHash      string           `json:"context_hash"`
	ContextItemCount int              `json:"context_item_count"`
	SafetyOverrides  json.RawMessage  `json:"safety_overrides,omitempty"`
	IdempotencyKey   string           `json:"idempotency_key,omitempty"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
	// Cached 标记结果来自幂等重放而非新的 Provider 调用，不落库
	Cached    bool      `json:"cached,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
