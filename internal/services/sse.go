package services

import (
	"sync"
)

// TableEvent is a generic table-changed notification. No diff payload is
// carried; clients react by refetching the affected collection.
type TableEvent struct {
	Table  string `json:"table"`
	Action string `json:"action"` // insert, update, delete, sync
}

// SSEHub manages SSE client connections and event broadcasting
type SSEHub struct {
	clients map[string]chan TableEvent
	mu      sync.RWMutex
}

// NewSSEHub creates a new SSE hub instance
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]chan TableEvent),
	}
}

// Subscribe registers a new client and returns a channel for receiving events
func (h *SSEHub) Subscribe(clientID string) <-chan TableEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Buffered so a slow client never blocks the publisher
	ch := make(chan TableEvent, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client from the hub
func (h *SSEHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients
func (h *SSEHub) Publish(event TableEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		select {
		case ch <- event:
		default:
			// Client buffer full, drop this event
		}
	}
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Global SSE Hub instance
var globalSSEHub *SSEHub
var sseHubOnce sync.Once

// GetSSEHub returns the global SSE hub singleton
func GetSSEHub() *SSEHub {
	sseHubOnce.Do(func() {
		globalSSEHub = NewSSEHub()
	})
	return globalSSEHub
}

// PublishTableChanged broadcasts a table-changed event.
func PublishTableChanged(table, action string) {
	GetSSEHub().Publish(TableEvent{Table: table, Action: action})
}
