package realtime

import (
	"encoding/json"
	"sync"

	"github.com/orbtao/connectify/backend/pkg/logger"
)

// Event is the frame exchanged with websocket clients in both directions.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hub fans events out to the clients joined to a room. Rooms are user ids;
// one user may hold several connections.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log.WithComponent("realtime"),
	}
}

func (h *Hub) join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[room]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[room] = clients
	}
	clients[c] = struct{}{}
}

func (h *Hub) leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, room)
	}
}

// Online reports how many connections are joined to room.
func (h *Hub) Online(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit delivers an event to every client in room. Delivery is at most once:
// a client whose buffer is full misses the event.
func (h *Hub) Emit(room, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.log.Error("relay payload not encodable", "event", event, "error", err)
		return
	}
	frame, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		h.log.Error("relay frame not encodable", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if !c.enqueue(frame) {
			h.log.Debug("dropping event for slow client", "room", room, "event", event)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0)
	for _, room := range h.rooms {
		for c := range room {
			clients = append(clients, c)
		}
	}
	h.rooms = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
