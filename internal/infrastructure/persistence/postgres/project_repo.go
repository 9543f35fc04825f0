package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"worldbest-ai-api/internal/domain/entity"
	apperrors "worldbest-ai-api/pkg/errors"
)

// ProjectRepository 项目仓储实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// GetForUser 加载项目并校验访问权限。
// 权限不足与项目不存在统一返回 ErrProjectNotFound。
func (r *ProjectRepository) GetForUser(ctx context.Context, tenantID, projectID, userID string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetForUser")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	query := `
		SELECT id, tenant_id, owner_id, title, genre, synopsis, time_period,
			target_audience, style_profile, collaborator_ids, created_at, updated_at
		FROM projects
		WHERE id = $1 AND tenant_id = $2
			AND deleted_at IS NULL
			AND (owner_id = $3 OR $3 = ANY(collaborator_ids))
	`

	var (
		p            entity.Project
		genre        sql.NullString
		synopsis     sql.NullString
		timePeriod   sql.NullString
		audience     sql.NullString
		styleProfile []byte
	)
	err := q.QueryRowContext(ctx, query, projectID, tenantID, userID).Scan(
		&p.ID, &p.TenantID, &p.OwnerID, &p.Title, &genre, &synopsis, &timePeriod,
		&audience, &styleProfile, pq.Array(&p.CollaboratorIDs), &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrProjectNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("查询项目失败: %w", err)
	}

	p.Genre = genre.String
	p.Synopsis = synopsis.String
	p.TimePeriod = timePeriod.String
	p.TargetAudience = audience.String
	if len(styleProfile) > 0 {
		var sp entity.StyleProfile
		if err := json.Unmarshal(styleProfile, &sp); err != nil {
			return nil, fmt.Errorf("解析风格画像失败: %w", err)
		}
		p.StyleProfile = &sp
	}
	return &p, nil
}
