package entity

import (
	"time"
)

// Scene 场景实体，承载章节内叙事片段
type Scene struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	ProjectID    string    `json:"project_id"`
	ChapterID    string    `json:"chapter_id,omitempty"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary,omitempty"`
	Content      string    `json:"content,omitempty"`
	CharacterIDs []string  `json:"character_ids,omitempty"`
	LocationID   string    `json:"location_id,omitempty"`
	Sequence     int       `json:"sequence"`
	WordCount    int       `json:"word_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
