package milvus

import (
	"context"
	"fmt"

	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"worldbest-ai-api/internal/domain/entity"
	"worldbest-ai-api/pkg/metrics"
)

// Repository 上下文条目向量仓储
type Repository struct {
	client *Client
}

// NewRepository 创建向量仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// EnsureContextItemsCollection 确保集合、索引存在并已加载
func (r *Repository) EnsureContextItemsCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus 客户端未配置")
	}
	ctx, span := tracer.Start(ctx, "milvus.EnsureContextItemsCollection")
	defer span.End()

	collName := r.client.CollectionName(CollectionContextItems)
	has, err := r.client.milvus.HasCollection(ctx, collName)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("检查集合失败: %w", err)
	}
	if has {
		return r.client.LoadCollection(ctx, CollectionContextItems)
	}

	schema := ContextItemsSchema()
	schema.CollectionName = collName
	if err := r.client.milvus.CreateCollection(ctx, schema, milvusentity.DefaultShardNumber); err != nil {
		span.RecordError(err)
		return fmt.Errorf("创建集合失败: %w", err)
	}

	idx, err := milvusentity.NewIndexHNSW(
		milvusentity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("构建索引失败: %w", err)
	}
	if err := r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("创建索引失败: %w", err)
	}

	return r.client.LoadCollection(ctx, CollectionContextItems)
}

// UpsertContextItems 将携带向量的条目写入向量库，同键覆盖
func (r *Repository) UpsertContextItems(ctx context.Context, tenantID, projectID string, items []entity.ContextItem) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus 客户端未配置")
	}
	ctx, span := tracer.Start(ctx, "milvus.UpsertContextItems",
		trace.WithAttributes(
			attribute.String("tenant_id", tenantID),
			attribute.String("project_id", projectID),
			attribute.Int("count", len(items)),
		))
	defer span.End()

	if len(items) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionContextItems)
	partitionName := PartitionName(tenantID, projectID)

	has, _ := r.client.milvus.HasPartition(ctx, collName, partitionName)
	if !has {
		if err := r.client.milvus.CreatePartition(ctx, collName, partitionName); err != nil {
			span.RecordError(err)
			metrics.MilvusUpsertTotal.WithLabelValues(CollectionContextItems, "error").Inc()
			return fmt.Errorf("创建分区失败: %w", err)
		}
	}

	ids := make([]string, len(items))
	vectors := make([][]float32, len(items))
	tenantIDs := make([]string, len(items))
	projectIDs := make([]string, len(items))
	itemIDs := make([]string, len(items))
	itemTypes := make([]string, len(items))
	titles := make([]string, len(items))
	contents := make([]string, len(items))

	for i, item := range items {
		ids[i] = item.Key()
		vectors[i] = item.Embedding
		tenantIDs[i] = tenantID
		projectIDs[i] = projectID
		itemIDs[i] = item.ID
		itemTypes[i] = string(item.Type)
		titles[i] = item.Title
		contents[i] = item.Content
	}

	idCol := milvusentity.NewColumnVarChar("id", ids)
	vectorCol := milvusentity.NewColumnFloatVector("vector", VectorDimension, vectors)
	tenantCol := milvusentity.NewColumnVarChar("tenant_id", tenantIDs)
	projectCol := milvusentity.NewColumnVarChar("project_id", projectIDs)
	itemIDCol := milvusentity.NewColumnVarChar("item_id", itemIDs)
	typeCol := milvusentity.NewColumnVarChar("item_type", itemTypes)
	titleCol := milvusentity.NewColumnVarChar("title", titles)
	contentCol := milvusentity.NewColumnVarChar("content", contents)

	_, err := r.client.milvus.Upsert(ctx, collName, partitionName,
		idCol, vectorCol, tenantCol, projectCol, itemIDCol, typeCol, titleCol, contentCol)
	if err != nil {
		span.RecordError(err)
		metrics.MilvusUpsertTotal.WithLabelValues(CollectionContextItems, "error").Inc()
		return fmt.Errorf("写入向量失败: %w", err)
	}

	metrics.MilvusUpsertTotal.WithLabelValues(CollectionContextItems, "success").Inc()
	return nil
}

// SimilarItem 相似条目检索结果
type SimilarItem struct {
	ItemID   string
	ItemType string
	Title    string
	Content  string
	Score    float32
}

// SearchContextItems 在项目分区内检索与查询向量最相似的条目
func (r *Repository) SearchContextItems(ctx context.Context, tenantID, projectID string, queryVector []float32, topK int) ([]*SimilarItem, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus 客户端未配置")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchContextItems",
		trace.WithAttributes(
			attribute.String("tenant_id", tenantID),
			attribute.String("project_id", projectID),
			attribute.Int("top_k", topK),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionContextItems)
	partitionName := PartitionName(tenantID, projectID)

	// 分区尚未创建（新项目）时直接返回空结果
	if has, err := r.client.milvus.HasPartition(ctx, collName, partitionName); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("检查分区失败: %w", err)
	} else if !has {
		return []*SimilarItem{}, nil
	}

	filter := fmt.Sprintf(`tenant_id == "%s" && project_id == "%s"`, tenantID, projectID)

	sp, err := milvusentity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("构建检索参数失败: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		[]string{partitionName},
		filter,
		[]string{"item_id", "item_type", "title", "content"},
		[]milvusentity.Vector{milvusentity.FloatVector(queryVector)},
		"vector",
		milvusentity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("向量检索失败: %w", err)
	}

	var items []*SimilarItem
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			item := &SimilarItem{Score: result.Scores[i]}
			if col, ok := result.Fields.GetColumn("item_id").(*milvusentity.ColumnVarChar); ok {
				item.ItemID = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("item_type").(*milvusentity.ColumnVarChar); ok {
				item.ItemType = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("title").(*milvusentity.ColumnVarChar); ok {
				item.Title = col.Data()[i]
			}
			if col, ok := result.Fields.GetColumn("content").(*milvusentity.ColumnVarChar); ok {
				item.Content = col.Data()[i]
			}
			items = append(items, item)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(items)))
	return items, nil
}
