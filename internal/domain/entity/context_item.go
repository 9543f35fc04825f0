package entity

import (
	"encoding/json"
)

// ItemType 上下文条目类型
type ItemType string

const (
	ItemTypeProject   ItemType = "project"
	ItemTypeCharacter ItemType = "character"
	ItemTypeLocation  ItemType = "location"
	ItemTypeScene     ItemType = "scene"
	ItemTypeCulture   ItemType = "culture"
)

// ValidItemType 检查条目类型是否合法
func ValidItemType(t ItemType) bool {
	switch t {
	case ItemTypeProject, ItemTypeCharacter, ItemTypeLocation, ItemTypeScene, ItemTypeCulture:
		return true
	}
	return false
}

// ItemMetadata 条目元数据，按实体类型区分的标签联合
type ItemMetadata interface {
	ItemType() ItemType
}

// ProjectMetadata 项目条目元数据
type ProjectMetadata struct {
	Genre          string `json:"genre,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
}

func (ProjectMetadata) ItemType() ItemType { return ItemTypeProject }

// CharacterMetadata 角色条目元数据
type CharacterMetadata struct {
	Role              string `json:"role,omitempty"`
	RelationshipCount int    `json:"relationship_count,omitempty"`
}

func (CharacterMetadata) ItemType() ItemType { return ItemTypeCharacter }

// LocationMetadata 地点条目元数据
type LocationMetadata struct {
	Kind string `json:"kind,omitempty"`
}

func (LocationMetadata) ItemType() ItemType { return ItemTypeLocation }

// SceneMetadata 场景条目元数据
type SceneMetadata struct {
	ChapterID string `json:"chapter_id,omitempty"`
	Sequence  int    `json:"sequence,omitempty"`
}

func (SceneMetadata) ItemType() ItemType { return ItemTypeScene }

// CultureMetadata 文化条目元数据
type CultureMetadata struct {
	Language string `json:"language,omitempty"`
}

func (CultureMetadata) ItemType() ItemType { return ItemTypeCulture }

// ContextItem 上下文组装产出的单个条目
type ContextItem struct {
	Type            ItemType     `json:"type"`
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	EstimatedTokens int          `json:"estimated_tokens"`
	Metadata        ItemMetadata `json:"metadata,omitempty"`
	// Embedding 相似度增强阶段按 title+content 计算，失败则保持为空
	Embedding []float32 `json:"-"`
}

// Key 返回条目去重键（类型 + ID）
func (i ContextItem) Key() string {
	return string(i.Type) + ":" + i.ID
}

// UnmarshalJSON 按 type 标签还原元数据的具体类型
func (i *ContextItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type            ItemType        `json:"type"`
		ID              string          `json:"id"`
		Title           string          `json:"title"`
		Content         string          `json:"content"`
		EstimatedTokens int             `json:"estimated_tokens"`
		Metadata        json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	i.Type = raw.Type
	i.ID = raw.ID
	i.Title = raw.Title
	i.Content = raw.Content
	i.EstimatedTokens = raw.EstimatedTokens
	i.Metadata = nil
	if len(raw.Metadata) == 0 || string(raw.Metadata) == "null" {
		return nil
	}
	switch raw.Type {
	case ItemTypeProject:
		var m ProjectMetadata
		if err := json.Unmarshal(raw.Metadata, &m); err != nil {
			return err
		}
		i.Metadata = m
	case ItemTypeCharacter:
		var m CharacterMetadata
		if err := json.Unmarshal(raw.Metadata, &m); err != nil {
			return err
		}
		i.Metadata = m
	case ItemTypeLocation:
		var m LocationMetadata
		if err := json.Unmarshal(raw.Metadata, &m); err != nil {
			return err
		}
		i.Metadata = m
	case ItemTypeScene:
		var m SceneMetadata
		if err := json.Unmarshal(raw.Metadata, &m); err != nil {
			return err
		}
		i.Metadata = m
	case ItemTypeCulture:
		var m CultureMetadata
		if err := json.Unmarshal(raw.Metadata, &m); err != nil {
			return err
		}
		i.Metadata = m
	}
	return nil
}
