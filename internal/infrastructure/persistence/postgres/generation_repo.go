package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"worldbest-ai-api/internal/domain/entity"
	"worldbest-ai-api/internal/domain/repository"
	apperrors "worldbest-ai-api/pkg/errors"
)

// GenerationRepository 生成记录仓储实现
type GenerationRepository struct {
	client *Client
}

// NewGenerationRepository 创建生成记录仓储
func NewGenerationRepository(client *Client) *GenerationRepository {
	return &GenerationRepository{client: client}
}

const generationColumns = `id, tenant_id, project_id, user_id, persona, intent,
	provider, model, content, finish_reason, prompt_tokens, completion_tokens,
	total_tokens, estimated_cost, context_hash, context_item_count,
	safety_overrides, idempotency_key, processing_time_ms, created_at`

// Create 插入一条生成记录。
// 表上有 (project_id, idempotency_key) 部分唯一索引，并发重复提交时
// 由唯一约束兜底。
func (r *GenerationRepository) Create(ctx context.Context, record *entity.GenerationRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.GenerationRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.db)

	query := `
		INSERT INTO generations (id, tenant_id, project_id, user_id, persona, intent,
			provider, model, content, finish_reason, prompt_tokens, completion_tokens,
			total_tokens, estimated_cost, context_hash, context_item_count,
			safety_overrides, idempotency_key, processing_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	var safetyOverrides interface{}
	if len(record.SafetyOverrides) > 0 {
		safetyOverrides = []byte(record.SafetyOverrides)
	}
	var idempotencyKey sql.NullString
	if record.IdempotencyKey != "" {
		idempotencyKey = sql.NullString{String: record.IdempotencyKey, Valid: true}
	}

	_, err := q.ExecContext(ctx, query,
		record.ID, record.TenantID, record.ProjectID, record.UserID, record.Persona, record.Intent,
		record.Provider, record.Model, record.Content, record.FinishReason,
		record.Usage.PromptTokens, record.Usage.CompletionTokens, record.Usage.TotalTokens,
		record.EstimatedCost, record.ContextHash, record.ContextItemCount,
		safetyOverrides, idempotencyKey, record.ProcessingTimeMs, record.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("插入生成记录失败: %w", err)
	}
	return nil
}

// GetByID 按 ID 加载生成记录
func (r *GenerationRepository) GetByID(ctx context.Context, tenantID, generationID string) (*entity.GenerationRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.GenerationRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`SELECT %s FROM generations WHERE id = $1 AND tenant_id = $2`, generationColumns)

	record, err := scanGeneration(q.QueryRowContext(ctx, query, generationID, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrGenerationNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("查询生成记录失败: %w", err)
	}
	return record, nil
}

// GetByIdempotencyKey 按 (projectID, key) 精确匹配查找，无匹配返回 (nil, nil)
func (r *GenerationRepository) GetByIdempotencyKey(ctx context.Context, tenantID, projectID, key string) (*entity.GenerationRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.GenerationRepository.GetByIdempotencyKey")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := fmt.Sprintf(`
		SELECT %s FROM generations
		WHERE tenant_id = $1 AND project_id = $2 AND idempotency_key = $3
		ORDER BY created_at ASC
		LIMIT 1`, generationColumns)

	record, err := scanGeneration(q.QueryRowContext(ctx, query, tenantID, projectID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("查询幂等记录失败: %w", err)
	}
	return record, nil
}

// ListByProject 按创建时间倒序分页返回项目下的生成记录
func (r *GenerationRepository) ListByProject(ctx context.Context, tenantID, projectID string, page *repository.Pagination) (*repository.PagedResult[*entity.GenerationRecord], error) {
	ctx, span := tracer.Start(ctx, "postgres.GenerationRepository.ListByProject")
	defer span.End()

	page.Normalize()
	q := getQuerier(ctx, r.client.db)

	var total int64
	countQuery := `SELECT COUNT(*) FROM generations WHERE tenant_id = $1 AND project_id = $2`
	if err := q.QueryRowContext(ctx, countQuery, tenantID, projectID).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("统计生成记录失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM generations
		WHERE tenant_id = $1 AND project_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, generationColumns)

	rows, err := q.QueryContext(ctx, query, tenantID, projectID, page.PageSize, page.Offset())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("查询生成记录列表失败: %w", err)
	}
	defer rows.Close()

	items := make([]*entity.GenerationRecord, 0, page.PageSize)
	for rows.Next() {
		record, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描生成记录行失败: %w", err)
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PagedResult[*entity.GenerationRecord]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func scanGeneration(row rowScanner) (*entity.GenerationRecord, error) {
	var (
		record          entity.GenerationRecord
		safetyOverrides []byte
		idempotencyKey  sql.NullString
	)
	err := row.Scan(
		&record.ID, &record.TenantID, &record.ProjectID, &record.UserID, &record.Persona, &record.Intent,
		&record.Provider, &record.Model, &record.Content, &record.FinishReason,
		&record.Usage.PromptTokens, &record.Usage.CompletionTokens, &record.Usage.TotalTokens,
		&record.EstimatedCost, &record.ContextHash, &record.ContextItemCount,
		&safetyOverrides, &idempotencyKey, &record.ProcessingTimeMs, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(safetyOverrides) > 0 {
		record.SafetyOverrides = safetyOverrides
	}
	record.IdempotencyKey = idempotencyKey.String
	return &record, nil
}
