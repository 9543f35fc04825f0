package entity

import (
	"time"
)

// Location 地点实体
type Location struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	ProjectID    string    `json:"project_id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind,omitempty"`
	Description  string    `json:"description,omitempty"`
	Atmosphere   string    `json:"atmosphere,omitempty"`
	Significance string    `json:"significance,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
