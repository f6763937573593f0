package realtime

import (
	"encoding/json"
	"sync"
	"time"

	appLog "orga-bot/internal/log"
)

// Client represents a single websocket client connection.
// The actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event is the JSON frame pushed to clients when tasks change.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

const (
	EventTaskCreated       = "task_created"
	EventTaskDone          = "task_done"
	EventTasksImported     = "tasks_imported"
	EventTasksReactivated  = "tasks_reactivated"
	EventBriefingPublished = "briefing_published"
)

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[Client]struct{})}
}

// Register adds a client under a user name.
func (h *Hub) Register(user string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[user]; !ok {
		h.clients[user] = make(map[Client]struct{})
	}
	h.clients[user][client] = struct{}{}
}

// Unregister removes a client; if the user has no more clients, cleans up map.
func (h *Hub) Unregister(user string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[user]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, user)
		}
	}
}

// Count returns the number of clients connected for user.
func (h *Hub) Count(user string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[user])
}

// Broadcast sends a raw message to all clients of a user and returns how
// many accepted it. Failed clients are cleaned up by their handler.
func (h *Hub) Broadcast(user string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.clients[user] {
		if c.Send(message) {
			delivered++
		}
	}
	return delivered
}

// Publish stamps and marshals ev, then broadcasts it to user.
func (h *Hub) Publish(user, eventType string, payload any) {
	if h == nil {
		return
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, At: time.Now().UTC()})
	if err != nil {
		appLog.Error("realtime event marshal failed", err, "type", eventType)
		return
	}
	n := h.Broadcast(user, data)
	appLog.Debug("realtime event published", "type", eventType, "clients", n)
}
