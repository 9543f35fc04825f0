// Package entity 定义领域实体
package entity

import (
	"time"
)

// StyleProfile 项目写作风格画像
type StyleProfile struct {
	Tone          string   `json:"tone,omitempty"`
	POV           string   `json:"pov,omitempty"`
	Tense         string   `json:"tense,omitempty"`
	Influences    []string `json:"influences,omitempty"`
	AvoidedTropes []string `json:"avoided_tropes,omitempty"`
}

// Project 创作项目实体，上下文组装的种子条目来源
type Project struct {
	ID              string        `json:"id"`
	TenantID        string        `json:"tenant_id"`
	OwnerID         string        `json:"owner_id"`
	Title           string        `json:"title"`
	Genre           string        `json:"genre,omitempty"`
	Synopsis        string        `json:"synopsis,omitempty"`
	TimePeriod      string        `json:"time_period,omitempty"`
	TargetAudience  string        `json:"target_audience,omitempty"`
	StyleProfile    *StyleProfile `json:"style_profile,omitempty"`
	CollaboratorIDs []string      `json:"collaborator_ids,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	DeletedAt       *time.Time    `json:"deleted_at,omitempty"`
}

// IsAccessibleBy 检查用户是否为项目所有者或协作者
func (p *Project) IsAccessibleBy(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, id := range p.CollaboratorIDs {
		if id == userID {
			return true
		}
	}
	return false
}
