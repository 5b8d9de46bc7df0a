// Package ws implements the realtime notification layer: a hub of
// rooms keyed per user and per project, with websocket subscribers.
// Delivery is best-effort; the durable state never depends on it.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Event is the envelope delivered to subscribers.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub manages room subscriptions. Rooms are keyed "user:{id}" and
// "project:{id}".
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[Subscriber]struct{}
	logger *zap.Logger
}

// NewHub creates an initialized Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[Subscriber]struct{}),
		logger: logger,
	}
}

// UserRoom returns the room key for a user's notifications.
func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// ProjectRoom returns the room key for a project's notifications.
func ProjectRoom(projectID uuid.UUID) string {
	return "project:" + projectID.String()
}

// Register adds a client to a room.
func (h *Hub) Register(room string, client Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[Subscriber]struct{})
	}
	h.rooms[room][client] = struct{}{}
}

// Unregister removes a client from a room.
func (h *Hub) Unregister(room string, client Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends an event to every client in the room. Clients whose
// send fails are dropped from the room.
func (h *Hub) Broadcast(room string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[room]
	if !ok {
		return
	}
	for c := range clients {
		if err := c.Send(payload); err != nil {
			c.Close()
			delete(clients, c)
		}
	}
	if len(clients) == 0 {
		delete(h.rooms, room)
	}
}

// NotifyUser implements the services notifier for per-user rooms.
func (h *Hub) NotifyUser(userID uuid.UUID, event string, payload interface{}) {
	h.Broadcast(UserRoom(userID), Event{Type: event, Payload: payload})
}

// NotifyProject implements the services notifier for per-project rooms.
func (h *Hub) NotifyProject(projectID uuid.UUID, event string, payload interface{}) {
	h.Broadcast(ProjectRoom(projectID), Event{Type: event, Payload: payload})
}
