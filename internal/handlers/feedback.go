package handlers

import (
	"strconv"

	"github.com/convoqa/backend/internal/config"
	"github.com/convoqa/backend/internal/middleware"
	"github.com/convoqa/backend/internal/models"
	"github.com/convoqa/backend/internal/services"
	"github.com/convoqa/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
	authService     *services.AuthService
}

func NewFeedbackHandler(db *gorm.DB, cfg *config.Config) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: services.NewFeedbackService(db),
		authService:     services.NewAuthService(db, &cfg.JWT),
	}
}

func (h *FeedbackHandler) actor(c *gin.Context) (*models.User, error) {
	return h.authService.GetUser(middleware.GetUserID(c))
}

// List returns feedback rows, optionally scoped to one conversation
// GET /api/feedback?conversation_id=...
func (h *FeedbackHandler) List(c *gin.Context) {
	conversationID := c.Query("conversation_id")

	var (
		feedback []models.HumanFeedback
		err      error
	)
	if conversationID != "" {
		feedback, err = h.feedbackService.ListByConversation(c.Request.Context(), conversationID)
	} else {
		feedback, err = h.feedbackService.ListAll(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feedback)
}

// Reviewers returns the distinct reviewer identities for filter dropdowns
// GET /api/reviewers
func (h *FeedbackHandler) Reviewers(c *gin.Context) {
	reviewers, err := h.feedbackService.Reviewers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reviewers)
}

// Create submits a new review
// POST /api/feedback
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req services.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	reviewer, err := h.actor(c)
	if err != nil {
		response.Unauthorized(c, "user not found")
		return
	}

	feedback, err := h.feedbackService.Create(c.Request.Context(), &req, reviewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}

// Update rewrites an existing review
// PUT /api/feedback/:id
func (h *FeedbackHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid feedback ID")
		return
	}

	var req services.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		response.Unauthorized(c, "user not found")
		return
	}

	feedback, err := h.feedbackService.Update(c.Request.Context(), uint(id), &req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feedback)
}

// Delete removes a review
// DELETE /api/feedback/:id
func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid feedback ID")
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		response.Unauthorized(c, "user not found")
		return
	}

	if err := h.feedbackService.Delete(c.Request.Context(), uint(id), actor); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "feedback deleted"})
}
