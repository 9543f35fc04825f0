package milvus

import (
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionContextItems 上下文条目集合
	CollectionContextItems = "context_items"

	// VectorDimension 向量维度
	VectorDimension = 1024
)

// ContextItemsSchema 上下文条目 Collection Schema
func ContextItemsSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionContextItems,
		Description:    "Project knowledge items for semantic similarity",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{"max_length": "128"},
			},
			{
				Name:       "vector",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": "1024"},
			},
			{
				Name:       "tenant_id",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "project_id",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "item_id",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "item_type",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "32"},
			},
			{
				Name:       "title",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "512"},
			},
			{
				Name:       "content",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "65535"},
			},
		},
	}
}

// PartitionName 生成分区名称，非法字符替换为下划线
func PartitionName(tenantID, projectID string) string {
	sanitize := func(s string) string {
		return strings.ReplaceAll(s, "-", "_")
	}
	return "tenant_" + sanitize(tenantID) + "_proj_" + sanitize(projectID)
}
