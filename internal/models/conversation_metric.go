package models

import "time"

// RatingSource indicates which inputs back a conversation's displayed score.
type RatingSource string

const (
	RatingSourceAI    RatingSource = "ai"
	RatingSourceHuman RatingSource = "human"
	RatingSourceBoth  RatingSource = "both"
	RatingSourceNone  RatingSource = "none"
)

// ConversationMetric is one synced record per customer-support conversation.
// Rows are written only by the Intercom sync job; the dashboard treats them
// as read-only.
type ConversationMetric struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	ConversationID string  `gorm:"uniqueIndex;size:100;not null" json:"conversation_id"`
	AgentName      string  `gorm:"size:200;index" json:"agent_name"`
	Workspace      *string `gorm:"size:200" json:"workspace"`
	IsReviewQueue  bool    `gorm:"default:false;index" json:"is_review_queue"`
	// MetricDate is an ISO string compared by its YYYY-MM-DD prefix only.
	// It is never round-tripped through UTC so a conversation stays on the
	// day the reviewer saw it locally.
	MetricDate       string    `gorm:"size:40;index" json:"metric_date"`
	AIScore          *float64  `json:"ai_score"` // 0-5 scale
	ResolutionStatus *string   `gorm:"size:50" json:"resolution_status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (ConversationMetric) TableName() string { return "qa_metrics" }

// MetricDay returns the date-only prefix of MetricDate.
func (m *ConversationMetric) MetricDay() string {
	if len(m.MetricDate) >= 10 {
		return m.MetricDate[:10]
	}
	return m.MetricDate
}
