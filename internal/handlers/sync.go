package handlers

import (
	"github.com/convoqa/backend/internal/services"
	"github.com/convoqa/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SyncHandler struct {
	syncService *services.IntercomSyncService
}

func NewSyncHandler(syncService *services.IntercomSyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

type syncRunRequest struct {
	Days      int    `json:"days"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Run enqueues a manual Intercom sync
// POST /api/sync/run
func (h *SyncHandler) Run(c *gin.Context) {
	var req syncRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, err.Error())
		return
	}

	task := &services.SyncTask{
		JobID:     uuid.New().String(),
		Days:      req.Days,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Trigger:   "manual",
	}

	queue := services.GetTaskQueue()
	if queue == nil {
		response.ServerError(c, "task queue not initialized")
		return
	}
	if err := queue.Enqueue(task); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"job_id": task.JobID,
		"async":  queue.IsAsync(),
	})
}

// Status returns the most recent sync run
// GET /api/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	status := h.syncService.LastStatus()
	if status == nil {
		response.Success(c, gin.H{"status": "never_run"})
		return
	}
	response.Success(c, status)
}
