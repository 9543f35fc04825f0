package entity

import (
	"time"
)

// Culture 世界观文化设定实体
type Culture struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Values      string    `json:"values,omitempty"`
	Customs     string    `json:"customs,omitempty"`
	Language    string    `json:"language,omitempty"`
	SocialNorms string    `json:"social_norms,omitempty"`
	History     string    `json:"history,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
