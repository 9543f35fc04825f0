// Package llm 提供可插拔的文本生成后端
package llm

import (
	"context"
	"errors"
	"fmt"

	"worldbest-ai-api/internal/domain/entity"
)

// 生成结束原因
const (
	FinishStop          = "stop"
	FinishLength        = "length"
	FinishContentFilter = "content_filter"
	FinishError         = "error"
)

// TextRequest 文本生成请求
type TextRequest struct {
	SystemPrompt     string
	Prompt           string
	Model            string
	MaxTokens        int
	Temperature      float64
	TopP *float64
	// FrequencyPenalty/PresencePenalty 是否生效取决于后端实现，
	// eino 后端当前不透传这两个参数
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// TextResult 文本生成结果，用量字段来自后端实际返回值
type TextResult struct {
	Content          string
	FinishReason     string
	Usage            entity.TokenUsage
	Model            string
	ProcessingTimeMs int64
}

// Provider 生成后端能力契约
type Provider interface {
	// Name 返回后端标识
	Name() string
	// GenerateText 执行一次文本生成，后端不可达或拒绝请求时
	// 返回 ProviderUnavailableError
	GenerateText(ctx context.Context, req *TextRequest) (*TextResult, error)
	// GenerateEmbedding 计算文本向量，失败契约与 GenerateText 一致
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	// EstimateCost 按每千 Token 费率表预估费用，仅用于提示，非计费依据
	EstimateCost(model string, promptTokens, completionTokens int) float64
}

// ProviderUnavailableError 后端不可用错误，携带后端标识与上游状态
type ProviderUnavailableError struct {
	Provider string
	Status   string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s 不可用 (%s): %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("provider %s 不可用 (%s)", e.Provider, e.Status)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

// IsProviderUnavailable 判断错误链中是否包含后端不可用错误
func IsProviderUnavailable(err error) (*ProviderUnavailableError, bool) {
	var pe *ProviderUnavailableError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
