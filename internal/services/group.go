package services

import (
	"context"
	"errors"

	"github.com/convoqa/backend/internal/models"
	"github.com/convoqa/backend/pkg/response"
	"gorm.io/gorm"
)

// GroupService manages agent groups and the group->agents mapping consumed
// by the filter pipeline.
type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

func (s *GroupService) List(ctx context.Context) ([]models.AgentGroup, error) {
	var groups []models.AgentGroup
	if err := s.db.WithContext(ctx).Preload("Members").Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *GroupService) GetByID(ctx context.Context, id uint) (*models.AgentGroup, error) {
	var group models.AgentGroup
	if err := s.db.WithContext(ctx).Preload("Members").First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("group not found")
		}
		return nil, err
	}
	return &group, nil
}

type GroupRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Agents      []string `json:"agents"`
}

func (s *GroupService) Create(ctx context.Context, req *GroupRequest, createdBy uint) (*models.AgentGroup, error) {
	group := models.AgentGroup{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   createdBy,
	}
	for _, a := range req.Agents {
		group.Members = append(group.Members, models.AgentGroupMember{AgentName: a})
	}

	if err := s.db.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, err
	}

	PublishTableChanged(models.AgentGroup{}.TableName(), "insert")
	return &group, nil
}

func (s *GroupService) Update(ctx context.Context, id uint, req *GroupRequest) (*models.AgentGroup, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
		}
		if err := tx.Model(group).Updates(updates).Error; err != nil {
			return err
		}
		// Membership is replaced wholesale.
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.AgentGroupMember{}).Error; err != nil {
			return err
		}
		for _, a := range req.Agents {
			member := models.AgentGroupMember{GroupID: group.ID, AgentName: a}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	PublishTableChanged(models.AgentGroup{}.TableName(), "update")
	return s.GetByID(ctx, id)
}

func (s *GroupService) Delete(ctx context.Context, id uint) error {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.AgentGroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(group).Error
	})
	if err != nil {
		return err
	}

	PublishTableChanged(models.AgentGroup{}.TableName(), "delete")
	return nil
}

// MembershipMap returns the full group-name -> agent-names mapping. It is
// queried fresh on every snapshot so a membership change takes effect on the
// next filter run without refetching the metric tables.
func (s *GroupService) MembershipMap(ctx context.Context) (map[string][]string, error) {
	var groups []models.AgentGroup
	if err := s.db.WithContext(ctx).Preload("Members").Find(&groups).Error; err != nil {
		return nil, err
	}

	m := make(map[string][]string, len(groups))
	for _, g := range groups {
		agents := make([]string, 0, len(g.Members))
		for _, member := range g.Members {
			agents = append(agents, member.AgentName)
		}
		m[g.Name] = agents
	}
	return m, nil
}
