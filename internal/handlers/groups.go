package handlers

import (
	"strconv"

	"github.com/convoqa/backend/internal/middleware"
	"github.com/convoqa/backend/internal/services"
	"github.com/convoqa/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(db *gorm.DB) *GroupHandler {
	return &GroupHandler{groupService: services.NewGroupService(db)}
}

// List returns all agent groups with members
// GET /api/groups
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, groups)
}

// GetByID returns one group
// GET /api/groups/:id
func (h *GroupHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group ID")
		return
	}

	group, err := h.groupService.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, group)
}

// Create adds a new agent group
// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req services.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update replaces a group's name, description and member list
// PUT /api/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group ID")
		return
	}

	var req services.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.groupService.Update(c.Request.Context(), uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, group)
}

// Delete removes a group and its memberships
// DELETE /api/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid group ID")
		return
	}

	if err := h.groupService.Delete(c.Request.Context(), uint(id)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "group deleted"})
}
