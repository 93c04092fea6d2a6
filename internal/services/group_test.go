package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/convoqa/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func groupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.AgentGroup{}, &models.AgentGroupMember{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func drainTableEvents(ch <-chan TableEvent) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func expectTableEvent(t *testing.T, ch <-chan TableEvent, action string) {
	t.Helper()
	select {
	case ev := <-ch:
		if ev.Table != "agent_groups" || ev.Action != action {
			t.Errorf("got event %+v, want agent_groups/%s", ev, action)
		}
	case <-time.After(100 * time.Millisecond):
		t.Errorf("timed out waiting for agent_groups %s event", action)
	}
}

func TestGroupService_MutationsPublishTableEvents(t *testing.T) {
	svc := NewGroupService(groupTestDB(t))
	ctx := context.Background()

	clientID := fmt.Sprintf("group-test-%d", time.Now().UnixNano())
	ch := GetSSEHub().Subscribe(clientID)
	defer GetSSEHub().Unsubscribe(clientID)
	drainTableEvents(ch)

	group, err := svc.Create(ctx, &GroupRequest{Name: "tier1", Agents: []string{"alice"}}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	expectTableEvent(t, ch, "insert")

	if _, err := svc.Update(ctx, group.ID, &GroupRequest{Name: "tier1", Agents: []string{"alice", "bob"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	expectTableEvent(t, ch, "update")

	if err := svc.Delete(ctx, group.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	expectTableEvent(t, ch, "delete")
}

func TestGroupService_FailedMutationDoesNotPublish(t *testing.T) {
	svc := NewGroupService(groupTestDB(t))
	ctx := context.Background()

	clientID := fmt.Sprintf("group-test-fail-%d", time.Now().UnixNano())
	ch := GetSSEHub().Subscribe(clientID)
	defer GetSSEHub().Unsubscribe(clientID)
	drainTableEvents(ch)

	if err := svc.Delete(ctx, 9999); err == nil {
		t.Fatal("deleting a missing group should fail")
	}

	select {
	case ev := <-ch:
		t.Errorf("unexpected event %+v after failed delete", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
