package services

import (
	"context"
	"errors"
	"time"

	"github.com/convoqa/backend/internal/config"
	"github.com/convoqa/backend/internal/models"
	"github.com/convoqa/backend/pkg/response"
	"gorm.io/gorm"
)

// ConversationService serves the reconciled, filtered, scored conversation
// list backing the dashboard table.
type ConversationService struct {
	db        *gorm.DB
	recon     *ReconcilerService
	scoring   *ScoringService
	configSvc *SystemConfigService
	appCfg    *config.Config
}

func NewConversationService(db *gorm.DB, appCfg *config.Config) *ConversationService {
	return &ConversationService{
		db:        db,
		recon:     NewReconcilerService(db, appCfg.Snapshot.RecentLimit),
		scoring:   NewScoringService(db, ScoreWeights{Human: appCfg.Scoring.HumanWeight, AI: appCfg.Scoring.AIWeight}),
		configSvc: NewSystemConfigService(db),
		appCfg:    appCfg,
	}
}

type ConversationListResponse struct {
	Total   int               `json:"total"`
	Items   []ConversationRow `json:"items"`
	TakenAt time.Time         `json:"taken_at"`
}

// List rebuilds the snapshot, applies the filter pipeline and attaches the
// aggregated score per visible row. Every call recomputes from the full
// reconciled collection; filter state accumulates nothing between runs.
func (s *ConversationService) List(ctx context.Context, filters *Filters) (*ConversationListResponse, error) {
	snap, err := s.recon.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	pipeline := &FilterPipeline{Queue: s.configSvc.QueueVisibilityRule(s.appCfg)}
	rows := pipeline.Apply(snap, filters)

	weights := s.scoring.Weights()
	for i := range rows {
		rows[i].Score = ConversationScore(rows[i].ConversationID, rows[i].Feedback, rows[i].AIScore, weights)
	}

	return &ConversationListResponse{
		Total:   len(rows),
		Items:   rows,
		TakenAt: snap.TakenAt,
	}, nil
}

// GetByID returns one conversation with feedback and aggregated score.
func (s *ConversationService) GetByID(ctx context.Context, conversationID string) (*ConversationRow, error) {
	var metric models.ConversationMetric
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&metric).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("conversation not found")
		}
		return nil, err
	}

	var feedback []models.HumanFeedback
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Find(&feedback).Error; err != nil {
		return nil, err
	}

	row := &ConversationRow{
		ConversationMetric: metric,
		Feedback:           feedback,
		RatingSource:       ratingSource(feedback, metric.AIScore),
	}
	row.Score = ConversationScore(conversationID, feedback, metric.AIScore, s.scoring.Weights())
	return row, nil
}

// ConversationSearchRequest is a direct store query: agent membership,
// partial conversation-id match, date range, resolution status, paginated
// newest-first.
type ConversationSearchRequest struct {
	Agents           []string `form:"agents"`
	ConversationID   string   `form:"conversation_id"` // substring match
	StartDate        string   `form:"start_date"`      // YYYY-MM-DD
	EndDate          string   `form:"end_date"`
	ResolutionStatus string   `form:"resolution_status"`
	Page             int      `form:"page"`
	PageSize         int      `form:"page_size"`
}

type ConversationSearchResponse struct {
	Total    int64                       `json:"total"`
	Page     int                         `json:"page"`
	PageSize int                         `json:"page_size"`
	Items    []models.ConversationMetric `json:"items"`
}

func (s *ConversationService) Search(ctx context.Context, req *ConversationSearchRequest) (*ConversationSearchResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 200 {
		req.PageSize = 50
	}

	query := s.db.WithContext(ctx).Model(&models.ConversationMetric{})
	if len(req.Agents) > 0 {
		query = query.Where("agent_name IN ?", req.Agents)
	}
	if req.ConversationID != "" {
		query = query.Where("conversation_id LIKE ?", "%"+req.ConversationID+"%")
	}
	if req.StartDate != "" {
		query = query.Where("metric_date >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		// Inclusive on the whole end day, even for timestamped ISO strings.
		if next, err := time.Parse(dayFormat, req.EndDate); err == nil {
			query = query.Where("metric_date < ?", next.AddDate(0, 0, 1).Format(dayFormat))
		}
	}
	if req.ResolutionStatus != "" {
		query = query.Where("resolution_status = ?", req.ResolutionStatus)
	}

	var total int64
	query.Count(&total)

	var items []models.ConversationMetric
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("metric_date DESC").Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &ConversationSearchResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// Agents returns the distinct agent names for the filter dropdown.
func (s *ConversationService) Agents(ctx context.Context) ([]string, error) {
	var agents []string
	err := s.db.WithContext(ctx).Model(&models.ConversationMetric{}).
		Where("agent_name != ''").
		Distinct("agent_name").
		Order("agent_name").
		Pluck("agent_name", &agents).Error
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// Workspaces returns the distinct workspace names for the filter dropdown.
func (s *ConversationService) Workspaces(ctx context.Context) ([]string, error) {
	var workspaces []string
	err := s.db.WithContext(ctx).Model(&models.ConversationMetric{}).
		Where("workspace IS NOT NULL AND workspace != ''").
		Distinct("workspace").
		Order("workspace").
		Pluck("workspace", &workspaces).Error
	if err != nil {
		return nil, err
	}
	return workspaces, nil
}
