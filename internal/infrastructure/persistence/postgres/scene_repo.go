package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"worldbest-ai-api/internal/domain/entity"
	apperrors "worldbest-ai-api/pkg/errors"
)

// SceneRepository 场景仓储实现
type SceneRepository struct {
	client *Client
}

// NewSceneRepository 创建场景仓储
func NewSceneRepository(client *Client) *SceneRepository {
	return &SceneRepository{client: client}
}

const sceneColumns = `id, tenant_id, project_id, chapter_id, title, summary,
	content, character_ids, location_id, sequence, word_count, created_at, updated_at`

// GetByID 按 ID 加载场景，项目归属由上游校验
func (r *SceneRepository) GetByID(ctx context.Context, tenantID, sceneID string) (*entity.Scene, error) {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`SELECT %s FROM scenes WHERE id = $1 AND tenant_id = $2`, sceneColumns)

	s, err := scanScene(q.QueryRowContext(ctx, query, sceneID, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrEntityNotFound.WithDetail("场景不存在: " + sceneID)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("查询场景失败: %w", err)
	}
	return s, nil
}

// ListRecent 按更新时间倒序返回最多 limit 个场景
func (r *SceneRepository) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Scene, error) {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.ListRecent")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`
		SELECT %s FROM scenes
		WHERE tenant_id = $1 AND project_id = $2
		ORDER BY updated_at DESC
		LIMIT $3`, sceneColumns)

	rows, err := q.QueryContext(ctx, query, tenantID, projectID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("查询场景列表失败: %w", err)
	}
	defer rows.Close()

	var scenes []*entity.Scene
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描场景行失败: %w", err)
		}
		scenes = append(scenes, s)
	}
	return scenes, rows.Err()
}

func scanScene(row rowScanner) (*entity.Scene, error) {
	var (
		s          entity.Scene
		chapterID  sql.NullString
		summary    sql.NullString
		content    sql.NullString
		locationID sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.TenantID, &s.ProjectID, &chapterID, &s.Title, &summary,
		&content, pq.Array(&s.CharacterIDs), &locationID, &s.Sequence, &s.WordCount,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ChapterID = chapterID.String
	s.Summary = summary.String
	s.Content = content.String
	s.LocationID = locationID.String
	return &s, nil
}
