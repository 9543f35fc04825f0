package dto

import (
	"worldbest-ai-api/internal/infrastructure/persistence/milvus"
)

// SimilarItemDTO 相似条目检索结果
type SimilarItemDTO struct {
	ItemID   string  `json:"item_id"`
	ItemType string  `json:"item_type"`
	Title    string  `json:"title"`
	Score    float32 `json:"score"`
}

// FromSimilarItems 批量转换检索结果，内容字段不回传
func FromSimilarItems(items []*milvus.SimilarItem) []*SimilarItemDTO {
	out := make([]*SimilarItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, &SimilarItemDTO{
			ItemID:   item.ItemID,
			ItemType: item.ItemType,
			Title:    item.Title,
			Score:    item.Score,
		})
	}
	return out
}
