package monitor

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, buffer int) *Client {
	return &Client{
		hub:    h,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		remote: "test",
		logger: h.logger,
	}
}

func TestClientEnqueue(t *testing.T) {
	c := newTestClient(NewHub(nil), 1)

	assert.True(t, c.enqueue([]byte("a")))
	assert.False(t, c.enqueue([]byte("b")), "buffer full")

	<-c.send
	c.close()
	c.close()
	assert.False(t, c.enqueue([]byte("c")), "dropped client")
}

func TestHubShutdownWhileSending(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(h, 4)
	h.Register(c)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.enqueue([]byte("x"))
			select {
			case <-c.send:
			default:
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			h.Broadcast([]byte("y"))
		}
	}()
	cancel()
	wg.Wait()
	<-stopped

	require.Zero(t, h.Count())
	assert.False(t, c.enqueue([]byte("z")))

	late := newTestClient(h, 1)
	h.Register(late)
	assert.False(t, late.enqueue([]byte("z")), "registered after shutdown")
}
