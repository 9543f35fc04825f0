package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"worldbest-ai-api/internal/config"
)

func TestCostTable_Estimate(t *testing.T) {
	table := NewCostTable(&config.LLMConfig{
		CostRates: map[string]config.CostRate{
			"gpt-4o": {PromptPer1K: 0.0025, CompletionPer1K: 0.01},
		},
	})

	t.Run("已知模型按费率表计算", func(t *testing.T) {
		// 2000 prompt + 1000 completion = 2*0.0025 + 1*0.01
		got := table.Estimate("gpt-4o", 2000, 1000)
		assert.InDelta(t, 0.015, got, 1e-9)
	})

	t.Run("未知模型按兜底费率计算", func(t *testing.T) {
		got := table.Estimate("some-new-model", 1000, 1000)
		assert.InDelta(t, 0.001+0.002, got, 1e-9)
	})

	t.Run("零用量费用为零", func(t *testing.T) {
		assert.Zero(t, table.Estimate("gpt-4o", 0, 0))
	})
}

func TestCostTable_DefaultOverridable(t *testing.T) {
	table := NewCostTable(&config.LLMConfig{
		CostRates: map[string]config.CostRate{
			"default": {PromptPer1K: 0.5, CompletionPer1K: 0.5},
		},
	})
	got := table.Estimate("unknown", 1000, 1000)
	assert.InDelta(t, 1.0, got, 1e-9)
}
