package monitor

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Controller is the part of the frame loop clients can drive.
// frame.Loop implements it.
type Controller interface {
	SetFocus(focus bool)
}

// Client is one websocket connection. send is never closed; the hub drops a
// client by closing done.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	remote string
	logger *slog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		remote: conn.RemoteAddr().String(),
		logger: hub.logger,
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// WritePump writes queued messages until the client is dropped or a write
// fails.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// ReadPump handles client commands until the connection fails.
func (c *Client) ReadPump(ctrl Controller, b *Broadcaster) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Debug("Invalid monitor message", "remote", c.remote, "error", err)
			continue
		}

		switch msg.Type {
		case "focus":
			ctrl.SetFocus(msg.Focus)
			data, err := json.Marshal(newFocusMessage(msg.Focus))
			if err != nil {
				continue
			}
			c.enqueue(data)
		case "sync":
			b.SendFull(c)
		default:
			c.logger.Debug("Unknown monitor message", "remote", c.remote, "type", msg.Type)
		}
	}
}

// enqueue queues data without blocking. It reports false when the client
// was dropped or its buffer is full.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}
