package auth

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// MaxFrameSize bounds one sealed frame. API requests and responses are
// small JSON documents.
const MaxFrameSize = 1 << 20

var ErrFrameTooLarge = errors.New("frame too large")

// Conn encrypts a stream as length prefixed ChaCha20-Poly1305 frames. The
// nonce is the frame sequence number and is never sent, so a dropped,
// replayed or reordered frame fails to open.
type Conn struct {
	net.Conn
	r io.Reader

	wmu     sync.Mutex
	seal    cipher.AEAD
	sendSeq uint64

	open    cipher.AEAD
	recvSeq uint64
	pending []byte
}

// WrapConn returns conn encrypted with sendKey for writes and recvKey for
// reads. Reads go through r, which may hold bytes already buffered from
// conn.
func WrapConn(conn net.Conn, r io.Reader, sendKey, recvKey []byte) (*Conn, error) {
	seal, err := chacha20poly1305.New(sendKey)
	if err != nil {
		return nil, err
	}
	open, err := chacha20poly1305.New(recvKey)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = conn
	}
	return &Conn{Conn: conn, r: r, seal: seal, open: open}, nil
}

func seqNonce(seq uint64) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(nonce[chacha20poly1305.NonceSize-8:], seq)
	return nonce
}

// Write sends p as a single frame.
func (c *Conn) Write(p []byte) (int, error) {
	if len(p)+c.seal.Overhead() > MaxFrameSize {
		return 0, ErrFrameTooLarge
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()

	frame := make([]byte, 4, 4+len(p)+c.seal.Overhead())
	frame = c.seal.Seal(frame, seqNonce(c.sendSeq), p, nil)
	binary.BigEndian.PutUint32(frame[:4], uint32(len(frame)-4))
	c.sendSeq++

	if _, err := c.Conn.Write(frame); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Read returns decrypted bytes. A clean close between frames reads as
// io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	for len(c.pending) == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
			return 0, err
		}
		size := binary.BigEndian.Uint32(hdr[:])
		if size > MaxFrameSize {
			return 0, ErrFrameTooLarge
		}
		sealed := make([]byte, size)
		if _, err := io.ReadFull(c.r, sealed); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		plain, err := c.open.Open(sealed[:0], seqNonce(c.recvSeq), sealed, nil)
		if err != nil {
			return 0, fmt.Errorf("open frame %d: %w", c.recvSeq, err)
		}
		c.recvSeq++
		c.pending = plain
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}
