package eino

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyProvider llmCtxKey = "llm_provider"
	llmCtxKeyIntent   llmCtxKey = "llm_intent"
)

// WithProvider 将当前调用的后端名写入 Context，供回调读取
func WithProvider(ctx context.Context, provider string) context.Context {
	if ctx == nil {
		return nil
	}
	p := strings.TrimSpace(provider)
	if p == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyProvider, p)
}

// WithIntent 将当前调用的生成意图写入 Context，供回调读取
func WithIntent(ctx context.Context, intent string) context.Context {
	if ctx == nil {
		return nil
	}
	i := strings.TrimSpace(intent)
	if i == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyIntent, i)
}

// ProviderFromContext 读取后端名，缺失时返回 unknown
func ProviderFromContext(ctx context.Context) string {
	return stringFromContext(ctx, llmCtxKeyProvider)
}

// IntentFromContext 读取生成意图，缺失时返回 unknown
func IntentFromContext(ctx context.Context) string {
	return stringFromContext(ctx, llmCtxKeyIntent)
}

func stringFromContext(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return strings.TrimSpace(s)
}
