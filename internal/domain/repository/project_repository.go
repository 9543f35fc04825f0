package repository

import (
	"context"

	"worldbest-ai-api/internal/domain/entity"
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	// GetForUser 按 ID 加载项目，仅当 userID 为所有者或协作者且项目未软删除时返回。
	// 无权访问与不存在统一返回 ErrProjectNotFound，避免泄露项目存在性。
	GetForUser(ctx context.Context, tenantID, projectID, userID string) (*entity.Project, error)
}
