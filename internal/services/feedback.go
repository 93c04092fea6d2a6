package services

import (
	"context"
	"errors"

	"github.com/convoqa/backend/internal/models"
	"github.com/convoqa/backend/pkg/response"
	"gorm.io/gorm"
)

// FeedbackService manages reviewer feedback rows. Mutation is restricted to
// the owning reviewer (admins exempt); every change publishes a qa_feedback
// table-changed event so connected dashboards refetch.
type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

type FeedbackRequest struct {
	ConversationID string  `json:"conversation_id" binding:"required"`
	LogicPath      int     `json:"logic_path"`
	Information    int     `json:"information"`
	Solution       int     `json:"solution"`
	Communication  int     `json:"communication"`
	LanguageUsage  int     `json:"language_usage"`
	FeedbackText   *string `json:"feedback_text"`
}

func (r *FeedbackRequest) validate() error {
	for _, v := range []int{r.LogicPath, r.Information, r.Solution, r.Communication, r.LanguageUsage} {
		if v < 0 || v > 4 {
			return response.NewBadRequest("category scores must be between 0 and 4")
		}
	}
	return nil
}

// ListByConversation returns the feedback for one conversation.
func (s *FeedbackService) ListByConversation(ctx context.Context, conversationID string) ([]models.HumanFeedback, error) {
	var feedback []models.HumanFeedback
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Order("created_at").Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// ListAll returns the full feedback table; matching happens client-side.
func (s *FeedbackService) ListAll(ctx context.Context) ([]models.HumanFeedback, error) {
	var feedback []models.HumanFeedback
	if err := s.db.WithContext(ctx).Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// Reviewers returns the distinct reviewer identities for the filter dropdown.
type ReviewerInfo struct {
	ReviewerID   string `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name"`
}

func (s *FeedbackService) Reviewers(ctx context.Context) ([]ReviewerInfo, error) {
	var reviewers []ReviewerInfo
	err := s.db.WithContext(ctx).Model(&models.HumanFeedback{}).
		Distinct("reviewer_id", "reviewer_name").
		Order("reviewer_name").
		Find(&reviewers).Error
	if err != nil {
		return nil, err
	}
	return reviewers, nil
}

// Create stores a new feedback row for the acting reviewer. One row per
// (conversation, reviewer); a second submission is rejected.
func (s *FeedbackService) Create(ctx context.Context, req *FeedbackRequest, reviewer *models.User) (*models.HumanFeedback, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var metricCount int64
	s.db.WithContext(ctx).Model(&models.ConversationMetric{}).
		Where("conversation_id = ?", req.ConversationID).Count(&metricCount)
	if metricCount == 0 {
		return nil, response.NewNotFound("conversation not found")
	}

	var existing int64
	s.db.WithContext(ctx).Model(&models.HumanFeedback{}).
		Where("conversation_id = ? AND reviewer_id = ?", req.ConversationID, reviewer.Username).
		Count(&existing)
	if existing > 0 {
		return nil, response.NewConflict("feedback already submitted for this conversation")
	}

	feedback := models.HumanFeedback{
		ConversationID: req.ConversationID,
		ReviewerID:     reviewer.Username,
		ReviewerName:   reviewer.Email,
		LogicPath:      req.LogicPath,
		Information:    req.Information,
		Solution:       req.Solution,
		Communication:  req.Communication,
		LanguageUsage:  req.LanguageUsage,
		RatingScheme:   models.RatingSchemeGraduated,
		FeedbackText:   req.FeedbackText,
	}
	feedback.Rating = feedback.ComputeRating()

	if err := s.db.WithContext(ctx).Create(&feedback).Error; err != nil {
		return nil, err
	}

	PublishTableChanged(models.HumanFeedback{}.TableName(), "insert")
	return &feedback, nil
}

// Update rewrites the category scores of an existing row. Only the owning
// reviewer (or an admin) may update.
func (s *FeedbackService) Update(ctx context.Context, id uint, req *FeedbackRequest, actor *models.User) (*models.HumanFeedback, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	feedback, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	feedback.LogicPath = req.LogicPath
	feedback.Information = req.Information
	feedback.Solution = req.Solution
	feedback.Communication = req.Communication
	feedback.LanguageUsage = req.LanguageUsage
	feedback.FeedbackText = req.FeedbackText
	// Re-scoring moves legacy binary rows onto the graduated scheme.
	feedback.RatingScheme = models.RatingSchemeGraduated
	feedback.Rating = feedback.ComputeRating()

	if err := s.db.WithContext(ctx).Save(feedback).Error; err != nil {
		return nil, err
	}

	PublishTableChanged(models.HumanFeedback{}.TableName(), "update")
	return feedback, nil
}

func (s *FeedbackService) Delete(ctx context.Context, id uint, actor *models.User) error {
	feedback, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(feedback).Error; err != nil {
		return err
	}

	PublishTableChanged(models.HumanFeedback{}.TableName(), "delete")
	return nil
}

func (s *FeedbackService) getOwned(ctx context.Context, id uint, actor *models.User) (*models.HumanFeedback, error) {
	var feedback models.HumanFeedback
	if err := s.db.WithContext(ctx).First(&feedback, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("feedback not found")
		}
		return nil, err
	}
	if actor.Role != "admin" && feedback.ReviewerID != actor.Username {
		return nil, response.NewForbidden("feedback belongs to another reviewer")
	}
	return &feedback, nil
}
