// Package persona 提供人设注册表，进程启动时加载且只读
package persona

import (
	"worldbest-ai-api/internal/domain/entity"
)

// Config 人设配置，定义一次生成调用的行为画像
type Config struct {
	Name                string            `json:"name"`
	SystemPrompt        string            `json:"system_prompt"`
	Temperature         float64           `json:"temperature"`
	MaxTokens           int               `json:"max_tokens"`
	PreferredProviders  []string          `json:"preferred_providers"`
	ContextPriority     []entity.ItemType `json:"context_priority"`
	SpecialInstructions []string          `json:"special_instructions"`
}
