package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"worldbest-ai-api/internal/domain/entity"
	apperrors "worldbest-ai-api/pkg/errors"
)

// LocationRepository 地点仓储实现
type LocationRepository struct {
	client *Client
}

// NewLocationRepository 创建地点仓储
func NewLocationRepository(client *Client) *LocationRepository {
	return &LocationRepository{client: client}
}

const locationColumns = `id, tenant_id, project_id, name, kind, description,
	atmosphere, significance, created_at, updated_at`

// GetByID 按 ID 加载地点，限定项目归属
func (r *LocationRepository) GetByID(ctx context.Context, tenantID, projectID, locationID string) (*entity.Location, error) {
	ctx, span := tracer.Start(ctx, "postgres.LocationRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`SELECT %s FROM locations WHERE id = $1 AND tenant_id = $2 AND project_id = $3`, locationColumns)

	l, err := scanLocation(q.QueryRowContext(ctx, query, locationID, tenantID, projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrEntityNotFound.WithDetail("地点不存在: " + locationID)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("查询地点失败: %w", err)
	}
	return l, nil
}

// ListRecent 按更新时间倒序返回最多 limit 个地点
func (r *LocationRepository) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Location, error) {
	ctx, span := tracer.Start(ctx, "postgres.LocationRepository.ListRecent")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`
		SELECT %s FROM locations
		WHERE tenant_id = $1 AND project_id = $2
		ORDER BY updated_at DESC
		LIMIT $3`, locationColumns)

	rows, err := q.QueryContext(ctx, query, tenantID, projectID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("查询地点列表失败: %w", err)
	}
	defer rows.Close()

	var locations []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描地点行失败: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func scanLocation(row rowScanner) (*entity.Location, error) {
	var (
		l            entity.Location
		kind         sql.NullString
		description  sql.NullString
		atmosphere   sql.NullString
		significance sql.NullString
	)
	err := row.Scan(
		&l.ID, &l.TenantID, &l.ProjectID, &l.Name, &kind, &description,
		&atmosphere, &significance, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Kind = kind.String
	l.Description = description.String
	l.Atmosphere = atmosphere.String
	l.Significance = significance.String
	return &l, nil
}
