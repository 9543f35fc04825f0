// Package generation 实现生成编排用例
package generation

import (
	"context"
	"encoding/json"
	"time"

	"worldbest-ai-api/internal/application/assembly"
	"worldbest-ai-api/internal/domain/entity"
)

// GenerateInput 一次生成请求的编排输入
type GenerateInput struct {
	TenantID        string
	UserID          string
	ProjectID       string
	Intent          entity.GenerationIntent
	Persona         string
	ContextRefs     []assembly.ContextRef
	Params          entity.GenerationParams
	SafetyOverrides json.RawMessage
	IdempotencyKey  string
}

// KVCache 键值缓存端口，上下文包缓存使用，纯优化而非正确性依赖
type KVCache interface {
	// Get 读取并反序列化缓存值，未命中返回 (false, nil)
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set 写入缓存值
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
