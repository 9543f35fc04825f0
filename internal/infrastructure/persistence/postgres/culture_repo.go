package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"worldbest-ai-api/internal/domain/entity"
	apperrors "worldbest-ai-api/pkg/errors"
)

// CultureRepository 文化设定仓储实现
type CultureRepository struct {
	client *Client
}

// NewCultureRepository 创建文化设定仓储
func NewCultureRepository(client *Client) *CultureRepository {
	return &CultureRepository{client: client}
}

const cultureColumns = `id, tenant_id, project_id, name, "values", customs,
	language, social_norms, history, created_at, updated_at`

// GetByID 按 ID 加载文化设定，限定项目归属
func (r *CultureRepository) GetByID(ctx context.Context, tenantID, projectID, cultureID string) (*entity.Culture, error) {
	ctx, span := tracer.Start(ctx, "postgres.CultureRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`SELECT %s FROM cultures WHERE id = $1 AND tenant_id = $2 AND project_id = $3`, cultureColumns)

	c, err := scanCulture(q.QueryRowContext(ctx, query, cultureID, tenantID, projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrEntityNotFound.WithDetail("文化设定不存在: " + cultureID)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("查询文化设定失败: %w", err)
	}
	return c, nil
}

// ListRecent 按更新时间倒序返回最多 limit 个文化设定
func (r *CultureRepository) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Culture, error) {
	ctx, span := tracer.Start(ctx, "postgres.CultureRepository.ListRecent")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`
		SELECT %s FROM cultures
		WHERE tenant_id = $1 AND project_id = $2
		ORDER BY updated_at DESC
		LIMIT $3`, cultureColumns)

	rows, err := q.QueryContext(ctx, query, tenantID, projectID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("查询文化设定列表失败: %w", err)
	}
	defer rows.Close()

	var cultures []*entity.Culture
	for rows.Next() {
		c, err := scanCulture(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描文化设定行失败: %w", err)
		}
		cultures = append(cultures, c)
	}
	return cultures, rows.Err()
}

func scanCulture(row rowScanner) (*entity.Culture, error) {
	var (
		c           entity.Culture
		values      sql.NullString
		customs     sql.NullString
		language    sql.NullString
		socialNorms sql.NullString
		history     sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.TenantID, &c.ProjectID, &c.Name, &values, &customs,
		&language, &socialNorms, &history, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Values = values.String
	c.Customs = customs.String
	c.Language = language.String
	c.SocialNorms = socialNorms.String
	c.History = history.String
	return &c, nil
}
