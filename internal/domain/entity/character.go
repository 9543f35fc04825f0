package entity

import (
	"time"
)

// Relationship 角色关系
type Relationship struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name,omitempty"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

// Character 角色实体
type Character struct {
	ID            string         `json:"id"`
	TenantID      string         `json:"tenant_id"`
	ProjectID     string         `json:"project_id"`
	Name          string         `json:"name"`
	Aliases       []string       `json:"aliases,omitempty"`
	Age           string         `json:"age,omitempty"`
	Role          string         `json:"role,omitempty"`
	Appearance    string         `json:"appearance,omitempty"`
	Personality   string         `json:"personality,omitempty"`
	Backstory     string         `json:"backstory,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
