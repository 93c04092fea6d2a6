package services

import (
	"testing"
	"time"

	"github.com/convoqa/backend/internal/models"
)

func metricRow(convID, agent, workspace, day string, feedback ...models.HumanFeedback) ConversationRow {
	row := ConversationRow{
		ConversationMetric: models.ConversationMetric{
			ConversationID: convID,
			AgentName:      agent,
			MetricDate:     day,
		},
		Feedback: feedback,
	}
	if workspace != "" {
		row.Workspace = &workspace
	}
	return row
}

func testSnapshot(rows ...ConversationRow) *Snapshot {
	return &Snapshot{
		Rows: rows,
		GroupAgents: map[string][]string{
			"tier1": {"alice", "bob"},
			"tier2": {"carol"},
			"empty": {},
		},
		TakenAt: time.Now(),
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
}

func TestFilterPipeline_NoFilters(t *testing.T) {
	snap := testSnapshot(
		metricRow("c1", "alice", "support", "2025-06-18"),
		metricRow("c2", "bob", "sales", "2025-06-17"),
	)
	p := &FilterPipeline{Now: fixedNow}

	rows := p.Apply(snap, &Filters{})
	if len(rows) != 2 {
		t.Errorf("empty filter state should pass everything, got %d rows", len(rows))
	}
}

func TestFilterPipeline_DateRange(t *testing.T) {
	snap := testSnapshot(
		metricRow("c1", "alice", "support", "2025-06-18"),
		metricRow("c2", "bob", "support", "2025-06-10"),
		// Timestamp suffix must not push the row out of its local day.
		metricRow("c3", "carol", "support", "2025-06-18T23:59:00"),
	)
	p := &FilterPipeline{Now: fixedNow}

	rows := p.Apply(snap, &Filters{Preset: PresetToday})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for today, got %d", len(rows))
	}
	for _, r := range rows {
		if r.MetricDay() != "2025-06-18" {
			t.Errorf("row %s outside today: %s", r.ConversationID, r.MetricDate)
		}
	}
}

func TestFilterPipeline_DateBoundaryStaysLocal(t *testing.T) {
	// A metric dated 23:59 UTC belongs to its own calendar day, never the
	// next one, because only the date prefix is compared.
	snap := testSnapshot(metricRow("c1", "alice", "support", "2025-06-15T23:59:00Z"))

	onThe15th := &FilterPipeline{Now: func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}}
	if rows := onThe15th.Apply(snap, &Filters{Preset: PresetToday}); len(rows) != 1 {
		t.Errorf("row should be included on its own day, got %d rows", len(rows))
	}

	onThe16th := &FilterPipeline{Now: func() time.Time {
		return time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	}}
	if rows := onThe16th.Apply(snap, &Filters{Preset: PresetToday}); len(rows) != 0 {
		t.Errorf("row must not leak onto the next day, got %d rows", len(rows))
	}
}

func TestFilterPipeline_Workspaces(t *testing.T) {
	snap := testSnapshot(
		metricRow("c1", "alice", "Support", "2025-06-18"),
		metricRow("c2", "bob", "sales", "2025-06-18"),
		metricRow("c3", "carol", "", "2025-06-18"),
	)
	p := &FilterPipeline{Now: fixedNow}

	// Workspace match is case-insensitive; rows without a workspace drop.
	rows := p.Apply(snap, &Filters{Workspaces: []string{"support"}})
	if len(rows) != 1 || rows[0].ConversationID != "c1" {
		t.Errorf("expected only c1, got %d rows", len(rows))
	}
}

func TestFilterPipeline_RestrictedQueueRule(t *testing.T) {
	designated := models.HumanFeedback{ConversationID: "c1", ReviewerID: "lead", ReviewerName: "Lead@example.com"}
	other := models.HumanFeedback{ConversationID: "c2", ReviewerID: "bob", ReviewerName: "bob@example.com"}

	snap := testSnapshot(
		metricRow("c1", "alice", "360_escalations", "2025-06-18", designated),
		metricRow("c2", "bob", "360_escalations", "2025-06-18", other),
		metricRow("c3", "carol", "360_escalations", "2025-06-18"),
		metricRow("c4", "dan", "support", "2025-06-18"),
	)
	p := &FilterPipeline{
		Queue: QueueVisibility{WorkspacePrefix: "360_", RestrictedReviewer: "lead@example.com"},
		Now:   fixedNow,
	}

	rows := p.Apply(snap, &Filters{Workspaces: []string{"360_escalations"}})
	if len(rows) != 1 || rows[0].ConversationID != "c1" {
		t.Fatalf("only the designated-reviewed row should survive, got %d rows", len(rows))
	}

	// Unrestricted workspaces are unaffected by the rule.
	rows = p.Apply(snap, &Filters{Workspaces: []string{"support"}})
	if len(rows) != 1 || rows[0].ConversationID != "c4" {
		t.Errorf("plain workspace filtering broken, got %d rows", len(rows))
	}
}

func TestFilterPipeline_RestrictedQueueNoDesignatedReviewer(t *testing.T) {
	fb := models.HumanFeedback{ConversationID: "c1", ReviewerID: "bob", ReviewerName: "bob@example.com"}
	snap := testSnapshot(metricRow("c1", "alice", "360_escalations", "2025-06-18", fb))
	p := &FilterPipeline{
		Queue: QueueVisibility{WorkspacePrefix: "360_"},
		Now:   fixedNow,
	}

	rows := p.Apply(snap, &Filters{Workspaces: []string{"360_escalations"}})
	if len(rows) != 0 {
		t.Errorf("with no designated reviewer configured, restricted rows should hide, got %d", len(rows))
	}
}

func TestFilterPipeline_Agents(t *testing.T) {
	snap := testSnapshot(
		metricRow("c1", "alice", "support", "2025-06-18"),
		metricRow("c2", "bob", "support", "2025-06-18"),
	)
	p := &FilterPipeline{Now: fixedNow}

	rows := p.Apply(snap, &Filters{Agents: []string{"bob"}})
	if len(rows) != 1 || rows[0].AgentName != "bob" {
		t.Errorf("agent filter failed, got %d rows", len(rows))
	}
}

func TestFilterPipeline_Groups(t *testing.T) {
	snap := testSnapshot(
		metricRow("c1", "alice", "support", "2025-06-18"),
		metricRow("c2", "bob", "support", "2025-06-18"),
		metricRow("c3", "carol", "support", "2025-06-18"),
	)
	p := &FilterPipeline{Now: fixedNow}

	rows := p.Apply(snap, &Filters{Groups: []string{"tier1"}})
	if len(rows) != 2 {
		t.Errorf("tier1 should match alice and bob, got %d rows", len(rows))
	}

	// A group resolving to no agents yields an empty result, not everything.
	rows = p.Apply(snap, &Filters{Groups: []string{"empty"}})
	if len(rows) != 0 {
		t.Errorf("empty group should yield 0 rows, got %d", len(rows))
	}

	rows = p.Apply(snap, &Filters{Groups: []string{"unknown"}})
	if len(rows) != 0 {
		t.Errorf("unknown group should yield 0 rows, got %d", len(rows))
	}
}

func TestFilterPipeline_Reviewers(t *testing.T) {
	fb := models.HumanFeedback{ConversationID: "c1", ReviewerID: "alice"}
	snap := testSnapshot(
		metricRow("c1", "x", "support", "2025-06-18", fb),
		metricRow("c2", "y", "support", "2025-06-18"),
	)
	p := &FilterPipeline{Now: fixedNow}

	rows := p.Apply(snap, &Filters{Reviewers: []string{"alice"}})
	if len(rows) != 1 || rows[0].ConversationID != "c1" {
		t.Errorf("reviewer filter failed, got %d rows", len(rows))
	}
}

func TestFilterPipeline_HumanOnly(t *testing.T) {
	fb := models.HumanFeedback{ConversationID: "c1", ReviewerID: "alice"}
	snap := testSnapshot(
		metricRow("c1", "x", "support", "2025-06-18", fb),
		metricRow("c2", "y", "support", "2025-06-18"),
	)
	p := &FilterPipeline{Now: fixedNow}

	rows := p.Apply(snap, &Filters{HumanOnly: true})
	if len(rows) != 1 || rows[0].ConversationID != "c1" {
		t.Errorf("human-only filter failed, got %d rows", len(rows))
	}
}

func TestFilterPipeline_Idempotent(t *testing.T) {
	snap := testSnapshot(
		metricRow("c1", "alice", "support", "2025-06-18"),
		metricRow("c2", "bob", "sales", "2025-06-10"),
		metricRow("c3", "carol", "support", "2025-06-17"),
	)
	p := &FilterPipeline{Now: fixedNow}
	f := &Filters{Preset: PresetLast7Days, Workspaces: []string{"support"}}

	first := p.Apply(snap, f)
	second := p.Apply(snap, f)

	if len(first) != len(second) {
		t.Fatalf("repeated Apply changed the result: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ConversationID != second[i].ConversationID {
			t.Errorf("row %d differs between runs", i)
		}
	}
	// The snapshot itself is untouched.
	if len(snap.Rows) != 3 {
		t.Errorf("Apply mutated the snapshot: %d rows", len(snap.Rows))
	}
}
