package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	einoobs "worldbest-ai-api/internal/observability/eino"
	"worldbest-ai-api/pkg/metrics"
)

// EinoProvider 基于 Eino ChatModel 的生成后端实现
type EinoProvider struct {
	name     string
	factory  *EinoFactory
	embedder embedding.Embedder
	costs    *CostTable
}

// NewEinoProvider 创建 Eino 后端，embedder 可为空（此时向量能力不可用）
func NewEinoProvider(name string, factory *EinoFactory, embedder embedding.Embedder, costs *CostTable) *EinoProvider {
	return &EinoProvider{
		name:     name,
		factory:  factory,
		embedder: embedder,
		costs:    costs,
	}
}

// Name 返回后端标识
func (p *EinoProvider) Name() string {
	return p.name
}

// GenerateText 调用 ChatModel 执行一次生成
func (p *EinoProvider) GenerateText(ctx context.Context, req *TextRequest) (*TextResult, error) {
	chatModel, err := p.factory.Get(ctx, p.name)
	if err != nil {
		if _, ok := IsProviderUnavailable(err); ok {
			return nil, err
		}
		return nil, &ProviderUnavailableError{Provider: p.name, Status: "misconfigured", Err: err}
	}

	msgs := make([]*schema.Message, 0, 2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, schema.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, schema.UserMessage(req.Prompt))

	// model.Option 不覆盖 frequency/presence penalty，这两个请求字段不透传
	opts := make([]model.Option, 0, 4)
	opts = append(opts, model.WithTemperature(float32(req.Temperature)))
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}
	if req.TopP != nil {
		opts = append(opts, model.WithTopP(float32(*req.TopP)))
	}

	modelName := req.Model
	if modelName == "" {
		modelName = p.factory.ModelName(p.name)
	}

	// 全局 callback 从 Context 读取后端名生成追踪 span
	ctx = einoobs.WithProvider(ctx, p.name)

	start := time.Now()
	outMsg, err := chatModel.Generate(ctx, msgs, opts...)
	elapsed := time.Since(start)
	metrics.LLMCallDuration.WithLabelValues(p.name, modelName).Observe(elapsed.Seconds())

	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(p.name, modelName, "error").Inc()
		// 调用方取消不属于后端故障，原样上抛
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderUnavailableError{Provider: p.name, Status: "upstream_error", Err: err}
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		metrics.LLMCallTotal.WithLabelValues(p.name, modelName, "empty").Inc()
		return nil, &ProviderUnavailableError{Provider: p.name, Status: "empty_response"}
	}
	metrics.LLMCallTotal.WithLabelValues(p.name, modelName, "success").Inc()

	result := &TextResult{
		Content:          strings.TrimSpace(outMsg.Content),
		FinishReason:     FinishStop,
		Model:            modelName,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
	if meta := outMsg.ResponseMeta; meta != nil {
		if meta.FinishReason != "" {
			result.FinishReason = normalizeFinishReason(meta.FinishReason)
		}
		if meta.Usage != nil {
			result.Usage.PromptTokens = meta.Usage.PromptTokens
			result.Usage.CompletionTokens = meta.Usage.CompletionTokens
			result.Usage.TotalTokens = meta.Usage.TotalTokens
			if result.Usage.TotalTokens == 0 {
				result.Usage.TotalTokens = result.Usage.PromptTokens + result.Usage.CompletionTokens
			}
			metrics.LLMTokensUsed.WithLabelValues(p.name, modelName, "prompt").Add(float64(result.Usage.PromptTokens))
			metrics.LLMTokensUsed.WithLabelValues(p.name, modelName, "completion").Add(float64(result.Usage.CompletionTokens))
		}
	}
	return result, nil
}

// GenerateEmbedding 计算文本向量
func (p *EinoProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if p.embedder == nil {
		return nil, &ProviderUnavailableError{Provider: p.name, Status: "misconfigured"}
	}
	ctx = einoobs.WithProvider(ctx, p.name)
	vecs, err := p.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderUnavailableError{Provider: p.name, Status: "upstream_error", Err: err}
	}
	if len(vecs) == 0 {
		return nil, &ProviderUnavailableError{Provider: p.name, Status: "empty_response"}
	}
	vec := make([]float32, len(vecs[0]))
	for i, v := range vecs[0] {
		vec[i] = float32(v)
	}
	return vec, nil
}

// EstimateCost 按费率表预估费用
func (p *EinoProvider) EstimateCost(model string, promptTokens, completionTokens int) float64 {
	return p.costs.Estimate(model, promptTokens, completionTokens)
}

// normalizeFinishReason 将上游结束原因归一到封闭集合
func normalizeFinishReason(reason string) string {
	switch strings.ToLower(reason) {
	case "stop", "end_turn":
		return FinishStop
	case "length", "max_tokens":
		return FinishLength
	case "content_filter":
		return FinishContentFilter
	default:
		return FinishStop
	}
}
