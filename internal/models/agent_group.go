package models

import (
	"time"

	"gorm.io/gorm"
)

// AgentGroup is a named team of support agents used by the group filter.
type AgentGroup struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Name        string             `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Description string             `gorm:"size:500" json:"description"`
	Members     []AgentGroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	CreatedBy   uint               `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	DeletedAt   gorm.DeletedAt     `gorm:"index" json:"-"`
}

// AgentGroupMember maps one agent name into a group.
type AgentGroupMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"index;not null" json:"group_id"`
	AgentName string    `gorm:"size:200;not null" json:"agent_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (AgentGroup) TableName() string       { return "agent_groups" }
func (AgentGroupMember) TableName() string { return "agent_group_members" }
