package services

import (
	"math"
	"strconv"

	"github.com/convoqa/backend/internal/config"
	"github.com/convoqa/backend/internal/models"
	"github.com/convoqa/backend/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where("key = ?", key).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("key = ?", key).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = models.SystemConfig{
			Key:   key,
			Value: value,
		}
		return s.db.Create(&cfg).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where("\"group\" = ?", group).Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// ScoringConfigResponse exposes the tunable aggregation parameters.
type ScoringConfigResponse struct {
	HumanWeight        float64 `json:"human_weight"`
	AIWeight           float64 `json:"ai_weight"`
	WorkspacePrefix    string  `json:"workspace_prefix"`
	RestrictedReviewer string  `json:"restricted_reviewer"`
}

func (s *SystemConfigService) GetScoringConfig(fallback *config.Config) *ScoringConfigResponse {
	resp := &ScoringConfigResponse{
		HumanWeight:        fallback.Scoring.HumanWeight,
		AIWeight:           fallback.Scoring.AIWeight,
		WorkspacePrefix:    fallback.ReviewQueue.WorkspacePrefix,
		RestrictedReviewer: fallback.ReviewQueue.RestrictedReviewer,
	}
	if v, err := strconv.ParseFloat(s.GetWithDefault("score_human_weight", ""), 64); err == nil {
		resp.HumanWeight = v
	}
	if v, err := strconv.ParseFloat(s.GetWithDefault("score_ai_weight", ""), 64); err == nil {
		resp.AIWeight = v
	}
	if v := s.GetWithDefault("restricted_workspace_prefix", ""); v != "" {
		resp.WorkspacePrefix = v
	}
	if v := s.GetWithDefault("restricted_reviewer_email", ""); v != "" {
		resp.RestrictedReviewer = v
	}
	return resp
}

type ScoringConfigRequest struct {
	HumanWeight        *float64 `json:"human_weight"`
	AIWeight           *float64 `json:"ai_weight"`
	WorkspacePrefix    *string  `json:"workspace_prefix"`
	RestrictedReviewer *string  `json:"restricted_reviewer"`
}

// UpdateScoringConfig validates and persists the aggregation parameters.
// Weights must be in [0,1] and sum to 1.
func (s *SystemConfigService) UpdateScoringConfig(req *ScoringConfigRequest) error {
	if req.HumanWeight != nil || req.AIWeight != nil {
		if req.HumanWeight == nil || req.AIWeight == nil {
			return response.NewBadRequest("human_weight and ai_weight must be updated together")
		}
		h, a := *req.HumanWeight, *req.AIWeight
		if h < 0 || h > 1 || a < 0 || a > 1 {
			return response.NewBadRequest("weights must be between 0 and 1")
		}
		if math.Abs(h+a-1.0) > 1e-9 {
			return response.NewBadRequest("weights must sum to 1")
		}
		if err := s.Set("score_human_weight", strconv.FormatFloat(h, 'f', -1, 64)); err != nil {
			return err
		}
		if err := s.Set("score_ai_weight", strconv.FormatFloat(a, 'f', -1, 64)); err != nil {
			return err
		}
	}
	if req.WorkspacePrefix != nil {
		if err := s.Set("restricted_workspace_prefix", *req.WorkspacePrefix); err != nil {
			return err
		}
	}
	if req.RestrictedReviewer != nil {
		if err := s.Set("restricted_reviewer_email", *req.RestrictedReviewer); err != nil {
			return err
		}
	}
	return nil
}

// QueueVisibilityRule resolves the active review-queue visibility rule.
func (s *SystemConfigService) QueueVisibilityRule(fallback *config.Config) QueueVisibility {
	cfg := s.GetScoringConfig(fallback)
	return QueueVisibility{
		WorkspacePrefix:    cfg.WorkspacePrefix,
		RestrictedReviewer: cfg.RestrictedReviewer,
	}
}
