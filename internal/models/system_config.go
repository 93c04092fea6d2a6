package models

import "time"

// SystemConfig is a runtime-editable key/value setting. Scoring weights and
// the review-queue visibility rule live here so they can be tuned without a
// redeploy.
type SystemConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:20;default:string" json:"type"` // string, int, float, bool
	Group     string    `gorm:"size:50;index" json:"group"`         // scoring, review_queue, system
	Label     string    `gorm:"size:200" json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SystemConfig) TableName() string { return "system_configs" }
