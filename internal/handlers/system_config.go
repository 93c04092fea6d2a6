package handlers

import (
	"github.com/convoqa/backend/internal/config"
	"github.com/convoqa/backend/internal/services"
	"github.com/convoqa/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
	appConfig     *config.Config
}

func NewSystemConfigHandler(db *gorm.DB, cfg *config.Config) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
		appConfig:     cfg,
	}
}

// GetScoringConfig returns the tunable aggregation parameters
// GET /api/config/scoring
func (h *SystemConfigHandler) GetScoringConfig(c *gin.Context) {
	response.Success(c, h.configService.GetScoringConfig(h.appConfig))
}

// UpdateScoringConfig persists new aggregation parameters (admin only)
// PUT /api/config/scoring
func (h *SystemConfigHandler) UpdateScoringConfig(c *gin.Context) {
	var req services.ScoringConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateScoringConfig(&req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, h.configService.GetScoringConfig(h.appConfig))
}
