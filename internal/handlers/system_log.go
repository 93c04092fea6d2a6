package handlers

import (
	"github.com/convoqa/backend/internal/services"
	"github.com/convoqa/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemLogHandler struct {
	logService *services.SystemLogService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{logService: services.NewSystemLogService(db)}
}

// List returns paginated system logs with filters
// GET /api/logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.logService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// GetModules returns the distinct log module names
// GET /api/logs/modules
func (h *SystemLogHandler) GetModules(c *gin.Context) {
	modules, err := h.logService.GetModules()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, modules)
}

// GetRetention returns the current log retention window
// GET /api/logs/retention
func (h *SystemLogHandler) GetRetention(c *gin.Context) {
	response.Success(c, gin.H{"retention_days": h.logService.GetRetentionDays()})
}

type retentionRequest struct {
	RetentionDays int `json:"retention_days" binding:"required,min=1,max=365"`
}

// SetRetention updates the log retention window (admin only)
// PUT /api/logs/retention
func (h *SystemLogHandler) SetRetention(c *gin.Context) {
	var req retentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.logService.SetRetentionDays(req.RetentionDays); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"retention_days": req.RetentionDays})
}

// Cleanup deletes logs older than the retention window (admin only)
// POST /api/logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	deleted, err := h.logService.CleanupOldLogs(h.logService.GetRetentionDays())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
