package realtime

import (
	"sync"
)

// Client represents a single websocket client connection.
// We keep it minimal here; the actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains the set of connected dashboard clients and broadcasts PR
// update events to all of them. Events are not scoped per user: every
// connected dashboard sees every tracked PR.
type Hub struct {
	mu      sync.RWMutex
	clients map[Client]struct{}
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[Client]struct{})}
}

// Register adds a connected client.
func (h *Hub) Register(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

// Unregister removes a client.
func (h *Hub) Unregister(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Broadcast sends a message to every connected client.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		// a failed write is left for the client's handler to clean up
		c.Send(message)
	}
}
