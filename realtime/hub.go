// Package realtime fans queue updates out to connected browsers. Every view
// of one event (fila, TV panel, admin) joins the event's room; whenever the
// synchronization layer publishes a fresh snapshot the whole room receives it
// and re-renders.
package realtime

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
)

// Message is the envelope pushed to clients.
type Message struct {
	Type    string      `json:"type"` // e.g. "QUEUE_UPDATED", "EVENT_UPDATED"
	Payload interface{} `json:"payload"`
	EventID string      `json:"event_id,omitempty"`
}

type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Debug("realtime client joined",
				slog.String("room", client.room),
				slog.Int("room_size", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, known := clients[client]; known {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
					h.logger.Debug("realtime client left", slog.String("room", client.room))
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToEvent sends a message to every client watching the event. A slow
// client whose buffer is full is skipped; it will catch up on the next
// broadcast or reconnect.
func (h *Hub) BroadcastToEvent(eventID string, msg Message) {
	msg.EventID = eventID

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal realtime message",
			slog.String("event_id", eventID), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomForEvent(eventID)] {
		client.trySend(data)
	}
}

// ActiveEventIDs lists the events that currently have at least one watcher.
// The synchronization layer uses it to scope wildcard reloads after the
// change feed reconnects.
func (h *Hub) ActiveEventIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.rooms))
	for room := range h.rooms {
		ids = append(ids, strings.TrimPrefix(room, "event_"))
	}
	return ids
}

func roomForEvent(eventID string) string {
	return "event_" + eventID
}
