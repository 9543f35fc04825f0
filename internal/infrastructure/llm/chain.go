package llm

import (
	"context"
	"fmt"

	"worldbest-ai-api/pkg/logger"
)

// Chain 按序回退的后端链：依次尝试给定后端，仅在后端不可用时
// 前进到下一个；其他错误立即上抛。单个后端内部不做重试。
type Chain struct {
	providers map[string]Provider
}

// NewChain 用给定后端集合构造回退链
func NewChain(providers ...Provider) *Chain {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Chain{providers: m}
}

// Provider 按名称查找后端
func (c *Chain) Provider(name string) (Provider, bool) {
	p, ok := c.providers[name]
	return p, ok
}

// GenerateText 按 names 顺序尝试生成，返回结果与实际命中的后端名
func (c *Chain) GenerateText(ctx context.Context, names []string, req *TextRequest) (*TextResult, string, error) {
	if len(names) == 0 {
		return nil, "", fmt.Errorf("后端列表为空")
	}

	var lastErr error
	for _, name := range names {
		p, ok := c.providers[name]
		if !ok {
			lastErr = &ProviderUnavailableError{Provider: name, Status: "unregistered"}
			continue
		}
		result, err := p.GenerateText(ctx, req)
		if err == nil {
			return result, name, nil
		}
		if _, unavailable := IsProviderUnavailable(err); !unavailable {
			return nil, name, err
		}
		logger.Warn(ctx, "生成后端不可用，尝试下一个", "provider", name, "error", err)
		lastErr = err
	}
	return nil, "", lastErr
}
