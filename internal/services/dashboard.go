package services

import (
	"context"
	"sort"

	"github.com/convoqa/backend/internal/config"
	"gorm.io/gorm"
)

// DashboardService computes the headline stats and leaderboards. Everything
// derives from the reconciled snapshot so the dashboard numbers always match
// the table the user is looking at.
type DashboardService struct {
	conversations *ConversationService
}

func NewDashboardService(db *gorm.DB, appCfg *config.Config) *DashboardService {
	return &DashboardService{
		conversations: NewConversationService(db, appCfg),
	}
}

type DashboardStatsRequest struct {
	Preset    string `form:"preset"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type DashboardStats struct {
	TotalConversations    int     `json:"total_conversations"`
	ReviewedConversations int     `json:"reviewed_conversations"`
	ReviewQueueSize       int     `json:"review_queue_size"`
	AverageAIScore        float64 `json:"average_ai_score"`
	AverageScore          float64 `json:"average_score"`
}

type AgentStats struct {
	AgentName         string  `json:"agent_name"`
	ConversationCount int     `json:"conversation_count"`
	ReviewedCount     int     `json:"reviewed_count"`
	AvgScore          float64 `json:"avg_score"`
}

type WorkspaceStats struct {
	Workspace         string  `json:"workspace"`
	ConversationCount int     `json:"conversation_count"`
	AvgScore          float64 `json:"avg_score"`
}

type DashboardResponse struct {
	Stats          DashboardStats   `json:"stats"`
	AgentStats     []AgentStats     `json:"agent_stats"`
	WorkspaceStats []WorkspaceStats `json:"workspace_stats"`
}

const leaderboardLimit = 10

func (s *DashboardService) GetStats(ctx context.Context, req *DashboardStatsRequest) (*DashboardResponse, error) {
	preset := DatePreset(req.Preset)
	if preset == "" && (req.StartDate != "" || req.EndDate != "") {
		preset = PresetCustom
	}

	list, err := s.conversations.List(ctx, &Filters{
		Preset:    preset,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return nil, err
	}

	resp := &DashboardResponse{}
	resp.Stats.TotalConversations = len(list.Items)

	var aiSum, scoreSum float64
	var aiCount, scoreCount int
	agents := make(map[string]*AgentStats)
	workspaces := make(map[string]*WorkspaceStats)
	agentScoreSums := make(map[string]float64)
	agentScoreCounts := make(map[string]int)
	wsScoreSums := make(map[string]float64)
	wsScoreCounts := make(map[string]int)

	for _, row := range list.Items {
		if len(row.Feedback) > 0 {
			resp.Stats.ReviewedConversations++
		}
		if row.IsReviewQueue {
			resp.Stats.ReviewQueueSize++
		}
		if row.AIScore != nil {
			aiSum += *row.AIScore
			aiCount++
		}
		if row.Score != nil {
			scoreSum += *row.Score
			scoreCount++
		}

		if row.AgentName != "" {
			a := agents[row.AgentName]
			if a == nil {
				a = &AgentStats{AgentName: row.AgentName}
				agents[row.AgentName] = a
			}
			a.ConversationCount++
			if len(row.Feedback) > 0 {
				a.ReviewedCount++
			}
			if row.Score != nil {
				agentScoreSums[row.AgentName] += *row.Score
				agentScoreCounts[row.AgentName]++
			}
		}

		if row.Workspace != nil && *row.Workspace != "" {
			w := workspaces[*row.Workspace]
			if w == nil {
				w = &WorkspaceStats{Workspace: *row.Workspace}
				workspaces[*row.Workspace] = w
			}
			w.ConversationCount++
			if row.Score != nil {
				wsScoreSums[*row.Workspace] += *row.Score
				wsScoreCounts[*row.Workspace]++
			}
		}
	}

	if aiCount > 0 {
		resp.Stats.AverageAIScore = aiSum / float64(aiCount)
	}
	if scoreCount > 0 {
		resp.Stats.AverageScore = scoreSum / float64(scoreCount)
	}

	for name, a := range agents {
		if n := agentScoreCounts[name]; n > 0 {
			a.AvgScore = agentScoreSums[name] / float64(n)
		}
		resp.AgentStats = append(resp.AgentStats, *a)
	}
	sort.Slice(resp.AgentStats, func(i, j int) bool {
		if resp.AgentStats[i].ConversationCount != resp.AgentStats[j].ConversationCount {
			return resp.AgentStats[i].ConversationCount > resp.AgentStats[j].ConversationCount
		}
		return resp.AgentStats[i].AgentName < resp.AgentStats[j].AgentName
	})
	if len(resp.AgentStats) > leaderboardLimit {
		resp.AgentStats = resp.AgentStats[:leaderboardLimit]
	}

	for name, w := range workspaces {
		if n := wsScoreCounts[name]; n > 0 {
			w.AvgScore = wsScoreSums[name] / float64(n)
		}
		resp.WorkspaceStats = append(resp.WorkspaceStats, *w)
	}
	sort.Slice(resp.WorkspaceStats, func(i, j int) bool {
		if resp.WorkspaceStats[i].ConversationCount != resp.WorkspaceStats[j].ConversationCount {
			return resp.WorkspaceStats[i].ConversationCount > resp.WorkspaceStats[j].ConversationCount
		}
		return resp.WorkspaceStats[i].Workspace < resp.WorkspaceStats[j].Workspace
	})
	if len(resp.WorkspaceStats) > leaderboardLimit {
		resp.WorkspaceStats = resp.WorkspaceStats[:leaderboardLimit]
	}

	return resp, nil
}
