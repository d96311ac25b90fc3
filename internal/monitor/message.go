package monitor

import (
	"time"

	"github.com/Alia5/gamecontrol/internal/frame"
)

// Message is sent from the server to websocket clients.
type Message struct {
	// Type is "full" for the initial and periodic sync, "state" for a
	// changed frame and "focus" to confirm a focus change.
	Type      string          `json:"type"`
	Seq       int64           `json:"seq"`
	Timestamp int64           `json:"timestamp"`
	Data      *frame.Snapshot `json:"data,omitempty"`
	Focus     *bool           `json:"focus,omitempty"`
}

func newStateMessage(kind string, seq int64, snap *frame.Snapshot) *Message {
	return &Message{
		Type:      kind,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      snap,
	}
}

func newFocusMessage(focus bool) *Message {
	return &Message{
		Type:      "focus",
		Timestamp: time.Now().UnixMilli(),
		Focus:     &focus,
	}
}

// ClientMessage is sent from a websocket client.
type ClientMessage struct {
	// Type is "focus" or "sync".
	Type  string `json:"type"`
	Focus bool   `json:"focus,omitempty"`
}
