// Package embedding 提供文本向量化客户端
package embedding

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"worldbest-ai-api/internal/config"
)

// NewEinoEmbedder 创建基于 Eino OpenAI 适配器的 Embedder
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint 未配置")
	}
	dims := cfg.Dimension
	embedder, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.Endpoint,
		Model:      cfg.Model,
		Dimensions: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 eino embedder 失败: %w", err)
	}
	return embedder, nil
}

// Adapter 将 Eino Embedder 适配为单文本向量化端口
type Adapter struct {
	embedder embedding.Embedder
}

// NewAdapter 创建适配器，embedder 为空时返回空适配器
func NewAdapter(embedder embedding.Embedder) *Adapter {
	if embedder == nil {
		return nil
	}
	return &Adapter{embedder: embedder}
}

// EmbedText 计算单条文本的向量
func (a *Adapter) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := a.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding 返回为空")
	}
	vec := make([]float32, len(vecs[0]))
	for i, v := range vecs[0] {
		vec[i] = float32(v)
	}
	return vec, nil
}
