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

// CharacterRepository 角色仓储实现
type CharacterRepository struct {
	client *Client
}

// NewCharacterRepository 创建角色仓储
func NewCharacterRepository(client *Client) *CharacterRepository {
	return &CharacterRepository{client: client}
}

const characterColumns = `id, tenant_id, project_id, name, aliases, age, role,
	appearance, personality, backstory, relationships, created_at, updated_at`

// GetByID 按 ID 加载角色，限定项目归属
func (r *CharacterRepository) GetByID(ctx context.Context, tenantID, projectID, characterID string) (*entity.Character, error) {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`SELECT %s FROM characters WHERE id = $1 AND tenant_id = $2 AND project_id = $3`, characterColumns)

	c, err := scanCharacter(q.QueryRowContext(ctx, query, characterID, tenantID, projectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrEntityNotFound.WithDetail("角色不存在: " + characterID)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("查询角色失败: %w", err)
	}
	return c, nil
}

// ListRecent 按更新时间倒序返回最多 limit 个角色
func (r *CharacterRepository) ListRecent(ctx context.Context, tenantID, projectID string, limit int) ([]*entity.Character, error) {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.ListRecent")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`
		SELECT %s FROM characters
		WHERE tenant_id = $1 AND project_id = $2
		ORDER BY updated_at DESC
		LIMIT $3`, characterColumns)

	rows, err := q.QueryContext(ctx, query, tenantID, projectID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("查询角色列表失败: %w", err)
	}
	defer rows.Close()

	var characters []*entity.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描角色行失败: %w", err)
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

// rowScanner 统一 *sql.Row 和 *sql.Rows 的扫描入口
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCharacter(row rowScanner) (*entity.Character, error) {
	var (
		c             entity.Character
		age           sql.NullString
		role          sql.NullString
		appearance    sql.NullString
		personality   sql.NullString
		backstory     sql.NullString
		relationships []byte
	)
	err := row.Scan(
		&c.ID, &c.TenantID, &c.ProjectID, &c.Name, pq.Array(&c.Aliases), &age, &role,
		&appearance, &personality, &backstory, &relationships, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Age = age.String
	c.Role = role.String
	c.Appearance = appearance.String
	c.Personality = personality.String
	c.Backstory = backstory.String
	if len(relationships) > 0 {
		if err := json.Unmarshal(relationships, &c.Relationships); err != nil {
			return nil, fmt.Errorf("解析角色关系失败: %w", err)
		}
	}
	return &c, nil
}
