package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Alia5/gamecontrol/internal/frame"
)

const fullSyncInterval = 5 * time.Second

// Broadcaster turns published snapshots into hub messages.
type Broadcaster struct {
	hub     *Hub
	changes chan frame.Snapshot
	seq     atomic.Int64
	logger  *slog.Logger

	mu   sync.Mutex
	last frame.Snapshot
}

func NewBroadcaster(h *Hub) *Broadcaster {
	return &Broadcaster{
		hub:     h,
		changes: make(chan frame.Snapshot, 64),
		logger:  h.logger,
	}
}

// Publish hands a snapshot to the broadcaster without blocking. It is meant
// as frame.Options.Publish.
func (b *Broadcaster) Publish(snap frame.Snapshot) {
	b.mu.Lock()
	b.last = snap
	b.mu.Unlock()
	select {
	case b.changes <- snap:
	default:
		b.logger.Debug("Monitor backlog full, dropping snapshot", "frame", snap.Frame)
	}
}

// Run forwards snapshots until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-b.changes:
			b.broadcast("state", snap)
		case <-ticker.C:
			if b.hub.Count() > 0 {
				b.broadcast("full", b.current())
			}
		}
	}
}

func (b *Broadcaster) current() frame.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *Broadcaster) broadcast(kind string, snap frame.Snapshot) {
	data, err := json.Marshal(newStateMessage(kind, b.seq.Add(1), &snap))
	if err != nil {
		b.logger.Error("Failed to marshal monitor message", "error", err)
		return
	}
	b.hub.Broadcast(data)
}

// SendFull sends the latest snapshot to one client.
func (b *Broadcaster) SendFull(c *Client) {
	snap := b.current()
	data, err := json.Marshal(newStateMessage("full", b.seq.Add(1), &snap))
	if err != nil {
		b.logger.Error("Failed to marshal monitor message", "error", err)
		return
	}
	c.enqueue(data)
}
