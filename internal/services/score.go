package services

import (
	"strconv"

	"github.com/convoqa/backend/internal/models"
	"gorm.io/gorm"
)

// ScoreWeights is the human/AI blend applied when a conversation has both a
// human review and an AI score. Human feedback dominates; the automated
// score is advisory.
type ScoreWeights struct {
	Human float64
	AI    float64
}

// DefaultScoreWeights is the fallback 70/30 blend.
var DefaultScoreWeights = ScoreWeights{Human: 0.7, AI: 0.3}

// ConversationScore computes the single comparable score for a conversation.
// It selects the feedback rows matching conversationID itself, so callers
// may pass the full feedback collection.
//
// Rules:
//   - no feedback, no AI score -> nil
//   - no feedback              -> the AI score (0-5)
//   - feedback, no AI score    -> mean of normalized ratings (0-5)
//   - both                     -> w.Human*humanAvg + w.AI*aiScore
func ConversationScore(conversationID string, feedback []models.HumanFeedback, aiScore *float64, w ScoreWeights) *float64 {
	var sum float64
	var n int
	for i := range feedback {
		if feedback[i].ConversationID == conversationID {
			sum += feedback[i].NormalizedRating()
			n++
		}
	}

	if n == 0 {
		if aiScore == nil {
			return nil
		}
		v := *aiScore
		return &v
	}

	humanAvg := sum / float64(n)
	if aiScore == nil {
		return &humanAvg
	}

	v := w.Human*humanAvg + w.AI*(*aiScore)
	return &v
}

// ScoringService resolves the active score weights and queue visibility rule
// from system_configs, falling back to file-config values.
type ScoringService struct {
	db        *gorm.DB
	configSvc *SystemConfigService
	fallback  ScoreWeights
}

func NewScoringService(db *gorm.DB, fallback ScoreWeights) *ScoringService {
	if fallback.Human == 0 && fallback.AI == 0 {
		fallback = DefaultScoreWeights
	}
	return &ScoringService{
		db:        db,
		configSvc: NewSystemConfigService(db),
		fallback:  fallback,
	}
}

// Weights returns the currently configured score weights.
func (s *ScoringService) Weights() ScoreWeights {
	w := s.fallback
	if v, err := strconv.ParseFloat(s.configSvc.GetWithDefault("score_human_weight", ""), 64); err == nil {
		w.Human = v
	}
	if v, err := strconv.ParseFloat(s.configSvc.GetWithDefault("score_ai_weight", ""), 64); err == nil {
		w.AI = v
	}
	return w
}
