package repository

import (
	"context"

	"worldbest-ai-api/internal/domain/entity"
)

// CharacterRepository 角色仓储接口
type CharacterRepository interface {
	// GetByID 按 ID 加载角色，要求角色属于指定项目
	GetByID(ctx context.Context, tenantID, projectID, characterID string) (*entity.Character, error)
	// ListRecent 按更新时间倒序返回最多 limit 个角色
	ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Character, error)
}

// LocationRepository 地点仓储接口
type LocationRepository interface {
	GetByID(ctx context.Context, tenantID, projectID, locationID string) (*entity.Location, error)
	ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Location, error)
}

// SceneRepository 场景仓储接口
type SceneRepository interface {
	// GetByID 仅按 ID 加载场景，项目归属由上游校验
	GetByID(ctx context.Context, tenantID, sceneID string) (*entity.Scene, error)
	ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Scene, error)
}

// CultureRepository 文化设定仓储接口
type CultureRepository interface {
	GetByID(ctx context.Context, tenantID, projectID, cultureID string) (*entity.Culture, error)
	ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Culture, error)
}
