package handlers

import (
	"github.com/convoqa/backend/internal/config"
	"github.com/convoqa/backend/internal/services"
	"github.com/convoqa/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ConversationHandler struct {
	conversationService *services.ConversationService
}

func NewConversationHandler(db *gorm.DB, cfg *config.Config) *ConversationHandler {
	return &ConversationHandler{
		conversationService: services.NewConversationService(db, cfg),
	}
}

// List returns the reconciled, filtered, scored conversation collection
// GET /api/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	var filters services.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.conversationService.List(c.Request.Context(), &filters)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Search runs a direct store query with pagination
// GET /api/conversations/search
func (h *ConversationHandler) Search(c *gin.Context) {
	var req services.ConversationSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.conversationService.Search(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns one conversation with feedback and score
// GET /api/conversations/:id
func (h *ConversationHandler) GetByID(c *gin.Context) {
	row, err := h.conversationService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, row)
}

// Agents returns the distinct agent names
// GET /api/agents
func (h *ConversationHandler) Agents(c *gin.Context) {
	agents, err := h.conversationService.Agents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, agents)
}

// Workspaces returns the distinct workspace names
// GET /api/workspaces
func (h *ConversationHandler) Workspaces(c *gin.Context) {
	workspaces, err := h.conversationService.Workspaces(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, workspaces)
}
