package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger hex dumps datagrams.
type RawLogger interface {
	// Log records one datagram. in is true for received data.
	Log(in bool, peer string, data []byte)
}

type rawLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewRaw returns a RawLogger writing to w. A nil writer discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

func (r *rawLogger) Log(in bool, peer string, data []byte) {
	if len(data) == 0 || r.w == nil {
		return
	}

	dir := "TX"
	if in {
		dir = "RX"
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s %s datagram: %d bytes, hex: %s\n",
		r.now().Format("2006/01/02 15:04:05.000"),
		dir,
		peer,
		len(data),
		hexbuf.String())

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
