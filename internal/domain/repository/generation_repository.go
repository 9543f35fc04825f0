package repository

import (
	"context"

	"worldbest-ai-api/internal/domain/entity"
)

// GenerationRepository 生成记录仓储接口
type GenerationRepository interface {
	// Create 插入一条生成记录
	Create(ctx context.Context, record *entity.GenerationRecord) error
	// GetByID 按 ID 加载生成记录
	GetByID(ctx context.Context, tenantID, generationID string) (*entity.GenerationRecord, error)
	// GetByIdempotencyKey 按 (projectID, idempotencyKey) 精确匹配查找已有记录，
	// 无匹配时返回 (nil, nil)
	GetByIdempotencyKey(ctx context.Context, tenantID, projectID, key string) (*entity.GenerationRecord, error)
	// ListByProject 按创建时间倒序分页返回项目下的生成记录
	ListByProject(ctx context.Context, tenantID, projectID string, page *Pagination) (*PagedResult[*entity.GenerationRecord], error)
}
