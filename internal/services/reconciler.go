package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/convoqa/backend/internal/models"
	"gorm.io/gorm"
)

// ConversationRow is one reconciled conversation with its attached feedback.
type ConversationRow struct {
	models.ConversationMetric
	Feedback     []models.HumanFeedback `json:"feedback"`
	RatingSource models.RatingSource    `json:"rating_source"`
	Score        *float64               `json:"score"`
}

// Snapshot is a reconciled, immutable-by-convention view of the metric
// tables. It is rebuilt from scratch on every load; nothing mutates it in
// place. The group membership map is captured alongside the rows so the
// filter pipeline stays synchronous and side-effect-free.
type Snapshot struct {
	Rows        []ConversationRow
	GroupAgents map[string][]string // group name -> agent names
	TakenAt     time.Time
}

// ReconcilerService merges the three overlapping metric batches into one
// deduplicated collection.
type ReconcilerService struct {
	db          *gorm.DB
	groupSvc    *GroupService
	recentLimit int
}

func NewReconcilerService(db *gorm.DB, recentLimit int) *ReconcilerService {
	if recentLimit <= 0 {
		recentLimit = 500
	}
	return &ReconcilerService{
		db:          db,
		groupSvc:    NewGroupService(db),
		recentLimit: recentLimit,
	}
}

// Snapshot loads the recent window, every human-reviewed conversation and
// every review-queue conversation, and reconciles them. Any failed fetch
// aborts the whole snapshot; there is no partial result and no retry.
func (s *ReconcilerService) Snapshot(ctx context.Context) (*Snapshot, error) {
	var recent []models.ConversationMetric
	if err := s.db.WithContext(ctx).
		Order("metric_date DESC").
		Limit(s.recentLimit).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("load recent metrics: %w", err)
	}

	// Human-reviewed rows are fetched unconditionally: the recent window is
	// capped and must not truncate reviewed conversations out of view.
	var reviewed []models.ConversationMetric
	reviewedIDs := s.db.Model(&models.HumanFeedback{}).Distinct("conversation_id")
	if err := s.db.WithContext(ctx).
		Where("conversation_id IN (?)", reviewedIDs).
		Find(&reviewed).Error; err != nil {
		return nil, fmt.Errorf("load human-reviewed metrics: %w", err)
	}

	var queue []models.ConversationMetric
	if err := s.db.WithContext(ctx).
		Where("is_review_queue = ?", true).
		Find(&queue).Error; err != nil {
		return nil, fmt.Errorf("load review-queue metrics: %w", err)
	}

	// The client does all feedback matching itself, so this is a full read.
	var feedback []models.HumanFeedback
	if err := s.db.WithContext(ctx).Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}

	groupAgents, err := s.groupSvc.MembershipMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load group membership: %w", err)
	}

	snap := BuildSnapshot(recent, reviewed, queue, feedback, groupAgents)
	return snap, nil
}

// BuildSnapshot reconciles the three batches into one keyed collection.
// Later batches overwrite earlier ones on conversation-id collision:
// recent < human-reviewed < review-queue. Feedback is attached per row,
// the rating source is tagged and rows are sorted newest-first by the
// date-only prefix of the metric date.
func BuildSnapshot(recent, reviewed, queue []models.ConversationMetric, feedback []models.HumanFeedback, groupAgents map[string][]string) *Snapshot {
	merged := make(map[string]models.ConversationMetric)
	for _, batch := range [][]models.ConversationMetric{recent, reviewed, queue} {
		for _, m := range batch {
			merged[m.ConversationID] = m
		}
	}

	byConv := make(map[string][]models.HumanFeedback)
	for _, f := range feedback {
		byConv[f.ConversationID] = append(byConv[f.ConversationID], f)
	}

	rows := make([]ConversationRow, 0, len(merged))
	for _, m := range merged {
		fb := byConv[m.ConversationID]
		rows = append(rows, ConversationRow{
			ConversationMetric: m,
			Feedback:           fb,
			RatingSource:       ratingSource(fb, m.AIScore),
		})
	}

	// Newest first. The full normalized date string sorts lexicographically,
	// which keeps intra-day time ordering when rows carry timestamps.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MetricDate != rows[j].MetricDate {
			return rows[i].MetricDate > rows[j].MetricDate
		}
		return rows[i].ConversationID < rows[j].ConversationID
	})

	if groupAgents == nil {
		groupAgents = map[string][]string{}
	}
	return &Snapshot{
		Rows:        rows,
		GroupAgents: groupAgents,
		TakenAt:     time.Now(),
	}
}

func ratingSource(feedback []models.HumanFeedback, aiScore *float64) models.RatingSource {
	hasHuman := len(feedback) > 0
	hasAI := aiScore != nil
	switch {
	case hasHuman && hasAI:
		return models.RatingSourceBoth
	case hasHuman:
		return models.RatingSourceHuman
	case hasAI:
		return models.RatingSourceAI
	default:
		return models.RatingSourceNone
	}
}
