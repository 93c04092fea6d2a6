package services

import (
	"testing"
	"time"
)

func TestSSEHub_NewSSEHub(t *testing.T) {
	hub := NewSSEHub()
	if hub == nil {
		t.Fatal("NewSSEHub should not return nil")
	}
	if hub.clients == nil {
		t.Error("clients map should be initialized")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("new hub should have 0 clients, got %d", hub.ClientCount())
	}
}

func TestSSEHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewSSEHub()

	ch := hub.Subscribe("client1")
	if ch == nil {
		t.Error("Subscribe should return a channel")
	}
	hub.Subscribe("client2")
	if hub.ClientCount() != 2 {
		t.Errorf("expected 2 clients, got %d", hub.ClientCount())
	}

	hub.Unsubscribe("client1")
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client after unsubscribe, got %d", hub.ClientCount())
	}

	hub.Unsubscribe("nonexistent")
	if hub.ClientCount() != 1 {
		t.Errorf("unsubscribing nonexistent should not affect count, got %d", hub.ClientCount())
	}
}

func TestSSEHub_PublishBroadcasts(t *testing.T) {
	hub := NewSSEHub()

	ch1 := hub.Subscribe("client1")
	ch2 := hub.Subscribe("client2")

	hub.Publish(TableEvent{Table: "qa_feedback", Action: "insert"})

	for i, ch := range []<-chan TableEvent{ch1, ch2} {
		select {
		case received := <-ch:
			if received.Table != "qa_feedback" || received.Action != "insert" {
				t.Errorf("client%d: got %+v", i+1, received)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client%d: timed out waiting for event", i+1)
		}
	}
}

func TestSSEHub_NonBlockingPublish(t *testing.T) {
	hub := NewSSEHub()

	// A subscriber that never drains must not block the publisher.
	hub.Subscribe("slow_client")

	for i := 0; i < 200; i++ {
		hub.Publish(TableEvent{Table: "qa_metrics", Action: "sync"})
	}
}

func TestSSEHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewSSEHub()

	ch := hub.Subscribe("client1")
	hub.Unsubscribe("client1")

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("closed channel read should not block")
	}
}

func TestGetSSEHub_Singleton(t *testing.T) {
	if GetSSEHub() != GetSSEHub() {
		t.Error("GetSSEHub should return the same instance")
	}
}
