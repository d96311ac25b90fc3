// Package monitor streams frame snapshots to websocket clients.
package monitor

import (
	"context"
	"log/slog"
	"sync"
)

// Hub tracks websocket clients and fans messages out to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Clients with a full buffer are
// dropped.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.enqueue(msg) {
			go h.Unregister(client)
		}
	}
}

// Run serves register and unregister requests until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Monitor client connected", "remote", client.remote, "total", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Monitor client disconnected", "remote", client.remote, "total", n)
		}
	}
}
