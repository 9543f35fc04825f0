package llm

import (
	"worldbest-ai-api/internal/config"
)

// defaultRateKey 费率表兜底键，未知模型按此费率估算
const defaultRateKey = "default"

// CostTable 每千 Token 费率表，按模型名索引
type CostTable struct {
	rates map[string]config.CostRate
}

// NewCostTable 从配置构造费率表
func NewCostTable(cfg *config.LLMConfig) *CostTable {
	rates := make(map[string]config.CostRate, len(cfg.CostRates))
	for model, rate := range cfg.CostRates {
		rates[model] = rate
	}
	if _, ok := rates[defaultRateKey]; !ok {
		rates[defaultRateKey] = config.CostRate{PromptPer1K: 0.001, CompletionPer1K: 0.002}
	}
	return &CostTable{rates: rates}
}

// Estimate 按实际用量计算预估费用（美元）
func (t *CostTable) Estimate(model string, promptTokens, completionTokens int) float64 {
	rate, ok := t.rates[model]
	if !ok {
		rate = t.rates[defaultRateKey]
	}
	return float64(promptTokens)/1000*rate.PromptPer1K +
		float64(completionTokens)/1000*rate.CompletionPer1K
}
