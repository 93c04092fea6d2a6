package handlers

import (
	"github.com/convoqa/backend/internal/config"
	"github.com/convoqa/backend/internal/services"
	"github.com/convoqa/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(db, cfg),
	}
}

// GetStats returns the headline stats and leaderboards for a date range
// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	var req services.DashboardStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	stats, err := h.dashboardService.GetStats(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
