package assembly

import (
	"context"

	"worldbest-ai-api/internal/domain/entity"
)

// ContextRef 调用方显式指定的上下文引用
type ContextRef struct {
	Type   entity.ItemType `json:"type"`
	ID     string          `json:"id"`
	Fields []string        `json:"fields,omitempty"`
}

// BuildInput 组装引擎输入
type BuildInput struct {
	TenantID     string
	ProjectID    string
	UserID       string
	Intent       entity.GenerationIntent
	ExplicitRefs []ContextRef
	// MaxTokens 上下文预算（不含种子条目）
	MaxTokens int
	// ContextPriority 自动补充阶段的实体类型遍历顺序，来自当前人设
	ContextPriority []entity.ItemType
}

// Diagnostic 组装过程中被吞掉的非致命失败，仅用于日志与调试
type Diagnostic struct {
	Stage   string `json:"stage"`
	Type    string `json:"type,omitempty"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// BuildResult 组装引擎输出
type BuildResult struct {
	// Items 按加入顺序排列：种子 → 显式引用 → 自动补充
	Items []entity.ContextItem
	// TotalTokens 不含种子条目的聚合估算 Token 数
	TotalTokens int
	Diagnostics []Diagnostic
}

// Embedder 文本向量化端口，相似度增强阶段使用
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// VectorWriter 向量写入端口，尽力而为地同步条目向量
type VectorWriter interface {
	UpsertContextItems(ctx context.Context, tenantID, projectID string, items []entity.ContextItem) error
}
