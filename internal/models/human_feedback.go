package models

import "time"

// Rating schemes. Early feedback rows scored each category as present/absent
// (sum 0-5); current rows score each category 0-4 (sum 0-20). The scheme is
// stored per row so normalization never has to guess.
const (
	RatingSchemeGraduated = "graduated"
	RatingSchemeBinary    = "binary"
)

// HumanFeedback is one reviewer's structured evaluation of a conversation.
// A reviewer submits at most one row per conversation; only the owning
// reviewer may edit or delete it.
type HumanFeedback struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ConversationID string `gorm:"size:100;not null;uniqueIndex:idx_feedback_conv_reviewer" json:"conversation_id"`
	ReviewerID     string `gorm:"size:100;not null;uniqueIndex:idx_feedback_conv_reviewer;index" json:"reviewer_id"`
	ReviewerName   string `gorm:"size:255" json:"reviewer_name"` // reviewer email

	LogicPath     int `json:"logic_path"`
	Information   int `json:"information"`
	Solution      int `json:"solution"`
	Communication int `json:"communication"`
	LanguageUsage int `json:"language_usage"`

	Rating       int     `json:"rating"` // sum of the five categories
	RatingScheme string  `gorm:"size:20;default:graduated" json:"rating_scheme"`
	FeedbackText *string `gorm:"type:text" json:"feedback_text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (HumanFeedback) TableName() string { return "qa_feedback" }

// ComputeRating returns the sum of the five category scores.
func (f *HumanFeedback) ComputeRating() int {
	return f.LogicPath + f.Information + f.Solution + f.Communication + f.LanguageUsage
}

// NormalizedRating maps the stored rating onto the 0-5 scale used for
// aggregation. Graduated ratings sum five 0-4 categories, so max 20 maps
// to 5; binary ratings are already on 0-5.
func (f *HumanFeedback) NormalizedRating() float64 {
	if f.RatingScheme == RatingSchemeBinary {
		return float64(f.Rating)
	}
	return float64(f.Rating) / 4.0
}
