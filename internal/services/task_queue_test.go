package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTaskTypeSync_Constant(t *testing.T) {
	if TaskTypeSync != "sync:intercom" {
		t.Errorf("TaskTypeSync = %q, expected %q", TaskTypeSync, "sync:intercom")
	}
}

func TestSyncTask_Structure(t *testing.T) {
	task := SyncTask{
		JobID:     "job-1",
		Days:      7,
		StartDate: "2025-06-01",
		EndDate:   "2025-06-07",
		Trigger:   "manual",
	}

	if task.JobID != "job-1" {
		t.Errorf("JobID = %q", task.JobID)
	}
	if task.Days != 7 {
		t.Errorf("Days = %d, expected 7", task.Days)
	}
	if task.StartDate != "2025-06-01" || task.EndDate != "2025-06-07" {
		t.Errorf("window = [%s, %s]", task.StartDate, task.EndDate)
	}
	if task.Trigger != "manual" {
		t.Errorf("Trigger = %q, expected manual", task.Trigger)
	}
}

func TestSyncQueue_New(t *testing.T) {
	queue := NewSyncQueue()
	if queue == nil {
		t.Error("NewSyncQueue should not return nil")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	queue := NewSyncQueue()
	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_Close(t *testing.T) {
	queue := NewSyncQueue()
	if err := queue.Close(); err != nil {
		t.Errorf("SyncQueue.Close() should return nil, got %v", err)
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()
	if err := queue.Enqueue(&SyncTask{JobID: "job-1"}); err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_EnqueueRunsProcessor(t *testing.T) {
	queue := NewSyncQueue()

	var mu sync.Mutex
	var processed string
	done := make(chan struct{})

	queue.SetProcessor(func(ctx context.Context, task *SyncTask) error {
		mu.Lock()
		processed = task.JobID
		mu.Unlock()
		close(done)
		return nil
	})

	if err := queue.Enqueue(&SyncTask{JobID: "job-42"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if processed != "job-42" {
		t.Errorf("processed task %q, expected job-42", processed)
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}
