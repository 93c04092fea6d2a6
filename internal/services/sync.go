package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/convoqa/backend/internal/config"
	"github.com/convoqa/backend/internal/models"
	"github.com/convoqa/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IntercomSyncService imports conversation metadata from the Intercom API
// into qa_metrics. It is the only writer of that table.
type IntercomSyncService struct {
	db         *gorm.DB
	cfg        *config.IntercomConfig
	httpClient *http.Client

	mu      sync.Mutex
	lastRun *SyncStatus
	cronSrv *cron.Cron
}

// SyncStatus is the outcome of the most recent sync run.
type SyncStatus struct {
	JobID      string     `json:"job_id"`
	Trigger    string     `json:"trigger"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Fetched    int        `json:"fetched"`
	Upserted   int        `json:"upserted"`
	Error      string     `json:"error,omitempty"`
}

func NewIntercomSyncService(db *gorm.DB, cfg *config.IntercomConfig) *IntercomSyncService {
	return &IntercomSyncService{
		db:         db,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// LastStatus returns the most recent run's status, or nil before first run.
func (s *IntercomSyncService) LastStatus() *SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	status := *s.lastRun
	return &status
}

// Run executes one sync: pages through Intercom conversations in the task's
// window, parses each into a ConversationMetric and upserts by conversation
// id. Errors abort the run and are recorded on the job status; rows already
// upserted stay.
func (s *IntercomSyncService) Run(ctx context.Context, task *SyncTask) error {
	status := &SyncStatus{
		JobID:     task.JobID,
		Trigger:   task.Trigger,
		StartedAt: time.Now(),
	}
	s.mu.Lock()
	s.lastRun = status
	s.mu.Unlock()

	err := s.run(ctx, task, status)

	now := time.Now()
	s.mu.Lock()
	status.FinishedAt = &now
	if err != nil {
		status.Error = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		LogError("sync", "intercom_sync", fmt.Sprintf("sync %s failed: %v", task.JobID, err), nil, "", "", nil)
		return err
	}

	LogInfo("sync", "intercom_sync",
		fmt.Sprintf("sync %s done: fetched=%d upserted=%d", task.JobID, status.Fetched, status.Upserted),
		nil, "", "", nil)
	if status.Upserted > 0 {
		PublishTableChanged(models.ConversationMetric{}.TableName(), "sync")
	}
	return nil
}

func (s *IntercomSyncService) run(ctx context.Context, task *SyncTask, status *SyncStatus) error {
	if s.cfg.Token == "" {
		return fmt.Errorf("intercom token not configured")
	}

	since := s.windowStart(task)
	until := windowEnd(task)

	admins, err := s.fetchAdmins(ctx)
	if err != nil {
		return fmt.Errorf("fetch admins: %w", err)
	}

	startingAfter := ""
	for {
		page, err := s.fetchConversationPage(ctx, startingAfter)
		if err != nil {
			return fmt.Errorf("fetch conversations: %w", err)
		}

		for _, conv := range page.Conversations {
			status.Fetched++
			if conv.CreatedAt < since.Unix() {
				continue
			}
			if !until.IsZero() && conv.CreatedAt >= until.Unix() {
				continue
			}
			metric := s.parseConversation(&conv, admins)
			if err := s.upsert(ctx, metric); err != nil {
				return fmt.Errorf("upsert %s: %w", metric.ConversationID, err)
			}
			status.Upserted++
		}

		if page.Pages.Next == nil || page.Pages.Next.StartingAfter == "" {
			return nil
		}
		startingAfter = page.Pages.Next.StartingAfter
	}
}

func (s *IntercomSyncService) windowStart(task *SyncTask) time.Time {
	if task.StartDate != "" {
		if t, err := time.Parse(dayFormat, task.StartDate); err == nil {
			return t
		}
	}
	days := task.Days
	if days <= 0 {
		days = s.cfg.SyncDays
	}
	if days <= 0 {
		days = 7
	}
	return time.Now().AddDate(0, 0, -days)
}

// windowEnd returns the exclusive upper bound of the sync window, or the zero
// time when the task has no end date. EndDate is inclusive, so conversations
// created anywhere on that day still sync.
func windowEnd(task *SyncTask) time.Time {
	if task.EndDate == "" {
		return time.Time{}
	}
	t, err := time.Parse(dayFormat, task.EndDate)
	if err != nil {
		return time.Time{}
	}
	return t.AddDate(0, 0, 1)
}

// --- Intercom API types (only the fields we read) ---

type intercomTag struct {
	Name string `json:"name"`
}

type intercomConversation struct {
	ID              string                 `json:"id"`
	CreatedAt       int64                  `json:"created_at"`
	State           string                 `json:"state"`
	AdminAssigneeID json.Number            `json:"admin_assignee_id"`
	CustomAttrs     map[string]interface{} `json:"custom_attributes"`
	Tags            struct {
		Tags []intercomTag `json:"tags"`
	} `json:"tags"`
}

type intercomConversationPage struct {
	Conversations []intercomConversation `json:"conversations"`
	Pages         struct {
		Next *struct {
			StartingAfter string `json:"starting_after"`
		} `json:"next"`
	} `json:"pages"`
}

type intercomAdminList struct {
	Admins []struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"admins"`
}

func (s *IntercomSyncService) fetchConversationPage(ctx context.Context, startingAfter string) (*intercomConversationPage, error) {
	params := url.Values{}
	params.Set("per_page", "150")
	if startingAfter != "" {
		params.Set("starting_after", startingAfter)
	}

	var page intercomConversationPage
	if err := s.get(ctx, "/conversations?"+params.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *IntercomSyncService) fetchAdmins(ctx context.Context) (map[string]string, error) {
	var list intercomAdminList
	if err := s.get(ctx, "/admins", &list); err != nil {
		return nil, err
	}

	admins := make(map[string]string, len(list.Admins))
	for _, a := range list.Admins {
		admins[a.ID.String()] = a.Name
	}
	return admins, nil
}

func (s *IntercomSyncService) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Intercom-Version", s.cfg.APIVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("intercom API %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseConversation maps an Intercom conversation onto a ConversationMetric.
func (s *IntercomSyncService) parseConversation(conv *intercomConversation, admins map[string]string) *models.ConversationMetric {
	metric := &models.ConversationMetric{
		ConversationID: conv.ID,
		// Date-only, from the conversation's own clock; never shifted later.
		MetricDate: time.Unix(conv.CreatedAt, 0).UTC().Format(dayFormat),
	}

	if name, ok := admins[conv.AdminAssigneeID.String()]; ok {
		metric.AgentName = name
	} else if id := conv.AdminAssigneeID.String(); id != "" && id != "null" {
		metric.AgentName = "Agent " + id
	}

	status := conv.State
	if status == "" {
		status = "completed"
	}
	metric.ResolutionStatus = &status

	if score := extractAIScore(conv.CustomAttrs); score != nil {
		metric.AIScore = score
	}

	workspace, isQueue := s.classifyTags(conv.Tags.Tags)
	if workspace != "" {
		metric.Workspace = &workspace
	}
	metric.IsReviewQueue = isQueue

	return metric
}

// extractAIScore finds the automated score among the custom attributes and
// normalizes it to 0-5. Percentage-scale scores map via 1 + 4*(x/100).
func extractAIScore(attrs map[string]interface{}) *float64 {
	for _, key := range []string{"ai_score", "AI Score", "copilot_score", "Copilot Score"} {
		raw, ok := attrs[key]
		if !ok || raw == nil {
			continue
		}
		var v float64
		switch t := raw.(type) {
		case float64:
			v = t
		case string:
			if _, err := fmt.Sscanf(t, "%f", &v); err != nil {
				continue
			}
		default:
			continue
		}
		if v > 5 {
			v = 1 + 4*(v/100.0)
		}
		v = math.Round(v*100) / 100
		return &v
	}
	return nil
}

// classifyTags derives the workspace and review-queue membership from the
// conversation's tags.
func (s *IntercomSyncService) classifyTags(tags []intercomTag) (string, bool) {
	workspace := ""
	isQueue := false

	queueTags := make(map[string]bool, len(s.cfg.QueueTags))
	for _, t := range s.cfg.QueueTags {
		queueTags[strings.ToLower(t)] = true
	}

	for _, tag := range tags {
		name := strings.ToLower(tag.Name)
		if queueTags[name] {
			isQueue = true
		}
		if ws, ok := s.cfg.WorkspaceTags[name]; ok {
			workspace = ws
		}
	}
	return workspace, isQueue
}

func (s *IntercomSyncService) upsert(ctx context.Context, metric *models.ConversationMetric) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"agent_name", "workspace", "is_review_queue",
			"metric_date", "ai_score", "resolution_status", "updated_at",
		}),
	}).Create(metric).Error
}

// StartSchedule registers the cron-driven sync when a schedule is configured.
func (s *IntercomSyncService) StartSchedule(queue TaskQueue, newJobID func() string) {
	if s.cfg.SyncCron == "" {
		return
	}

	s.cronSrv = cron.New()
	_, err := s.cronSrv.AddFunc(s.cfg.SyncCron, func() {
		task := &SyncTask{JobID: newJobID(), Trigger: "schedule"}
		if err := queue.Enqueue(task); err != nil {
			logger.Errorf("[Sync] Failed to enqueue scheduled sync: %v", err)
		}
	})
	if err != nil {
		logger.Errorf("[Sync] Invalid sync_cron %q: %v", s.cfg.SyncCron, err)
		return
	}
	s.cronSrv.Start()
	logger.Infof("[Sync] Scheduled Intercom sync: %s", s.cfg.SyncCron)
}

// StopSchedule stops the cron schedule if running.
func (s *IntercomSyncService) StopSchedule() {
	if s.cronSrv != nil {
		s.cronSrv.Stop()
	}
}
