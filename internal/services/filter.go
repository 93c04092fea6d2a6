package services

import (
	"strings"
	"time"

	"github.com/convoqa/backend/internal/models"
)

// Filters is one filter-state selection from the dashboard. Empty selections
// are no-ops for their step.
type Filters struct {
	Preset     DatePreset `form:"preset"`
	StartDate  string     `form:"start_date"` // custom range, YYYY-MM-DD
	EndDate    string     `form:"end_date"`
	Workspaces []string   `form:"workspaces"`
	Agents     []string   `form:"agents"`
	Groups     []string   `form:"groups"`
	Reviewers  []string   `form:"reviewers"`
	HumanOnly  bool       `form:"human_only"`
}

// QueueVisibility configures the restricted review-queue rule: when a
// workspace carrying the prefix is selected, its conversations stay visible
// only if the designated reviewer has reviewed them.
type QueueVisibility struct {
	WorkspacePrefix    string
	RestrictedReviewer string // reviewer email
}

// FilterPipeline reduces a snapshot to the rows matching a filter state.
// Apply is pure: it reads the snapshot and never mutates it, so re-running
// with the same inputs always yields the same result.
type FilterPipeline struct {
	Queue QueueVisibility
	Now   func() time.Time // injectable for tests; defaults to time.Now
}

// Apply runs the filter steps in order: date range, workspace (with the
// review-queue rule), agent, group, reviewer, human-reviewed-only.
func (p *FilterPipeline) Apply(snap *Snapshot, f *Filters) []ConversationRow {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	rows := snap.Rows
	rows = p.applyDateRange(rows, ResolveDateRange(f.Preset, f.StartDate, f.EndDate, now))
	rows = p.applyWorkspaces(rows, f.Workspaces)
	rows = p.applyAgents(rows, f.Agents)
	rows = p.applyGroups(rows, f.Groups, snap.GroupAgents)
	rows = p.applyReviewers(rows, f.Reviewers)
	rows = p.applyHumanOnly(rows, f.HumanOnly)
	return rows
}

func (p *FilterPipeline) applyDateRange(rows []ConversationRow, rng DateRange) []ConversationRow {
	if rng.IsOpen() {
		return rows
	}
	out := make([]ConversationRow, 0, len(rows))
	for _, r := range rows {
		if rng.Contains(r.MetricDay()) {
			out = append(out, r)
		}
	}
	return out
}

func (p *FilterPipeline) applyWorkspaces(rows []ConversationRow, selected []string) []ConversationRow {
	if len(selected) == 0 {
		return rows
	}

	prefix := strings.ToLower(p.Queue.WorkspacePrefix)
	sel := make(map[string]bool, len(selected))
	restricted := make(map[string]bool)
	for _, w := range selected {
		lw := strings.ToLower(w)
		sel[lw] = true
		if prefix != "" && strings.HasPrefix(lw, prefix) {
			restricted[lw] = true
		}
	}

	out := make([]ConversationRow, 0, len(rows))
	for _, r := range rows {
		if r.Workspace == nil {
			continue
		}
		lw := strings.ToLower(*r.Workspace)
		if !sel[lw] {
			continue
		}
		// Restricted-queue rows require a review by the designated reviewer.
		if restricted[lw] && !p.reviewedByDesignated(&r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (p *FilterPipeline) reviewedByDesignated(r *ConversationRow) bool {
	if p.Queue.RestrictedReviewer == "" {
		return false
	}
	for i := range r.Feedback {
		if strings.EqualFold(r.Feedback[i].ReviewerName, p.Queue.RestrictedReviewer) {
			return true
		}
	}
	return false
}

func (p *FilterPipeline) applyAgents(rows []ConversationRow, selected []string) []ConversationRow {
	if len(selected) == 0 {
		return rows
	}
	sel := make(map[string]bool, len(selected))
	for _, a := range selected {
		sel[a] = true
	}
	out := make([]ConversationRow, 0, len(rows))
	for _, r := range rows {
		if sel[r.AgentName] {
			out = append(out, r)
		}
	}
	return out
}

// applyGroups filters to agents belonging to any selected group. A selection
// resolving to zero mapped agents yields an empty result, not an error.
func (p *FilterPipeline) applyGroups(rows []ConversationRow, selected []string, groupAgents map[string][]string) []ConversationRow {
	if len(selected) == 0 {
		return rows
	}
	agents := make(map[string]bool)
	for _, g := range selected {
		for _, a := range groupAgents[g] {
			agents[a] = true
		}
	}
	out := make([]ConversationRow, 0, len(rows))
	for _, r := range rows {
		if agents[r.AgentName] {
			out = append(out, r)
		}
	}
	return out
}

func (p *FilterPipeline) applyReviewers(rows []ConversationRow, selected []string) []ConversationRow {
	if len(selected) == 0 {
		return rows
	}
	sel := make(map[string]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}
	out := make([]ConversationRow, 0, len(rows))
	for _, r := range rows {
		if reviewedByAny(r.Feedback, sel) {
			out = append(out, r)
		}
	}
	return out
}

func reviewedByAny(feedback []models.HumanFeedback, reviewers map[string]bool) bool {
	for i := range feedback {
		if reviewers[feedback[i].ReviewerID] {
			return true
		}
	}
	return false
}

func (p *FilterPipeline) applyHumanOnly(rows []ConversationRow, humanOnly bool) []ConversationRow {
	if !humanOnly {
		return rows
	}
	out := make([]ConversationRow, 0, len(rows))
	for _, r := range rows {
		if len(r.Feedback) > 0 {
			out = append(out, r)
		}
	}
	return out
}
