// Package transport carries the final controller state over UDP.
//
// Every datagram is
//
//	0-3:   magic "GCIN"
//	4:     version
//	5:     flags (bit 0: sealed)
//	6-7:   reserved
//	8-23:  sender session id
//	24..:  body
//
// The body is seq (u32 LE), agent action flags (u32 LE) and the encoded
// gamecontrol.State. A sealed body is a 24 byte nonce followed by the
// XChaCha20-Poly1305 ciphertext of the plain body, authenticated together
// with the header.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alia5/gamecontrol/gamecontrol"
)

const (
	Magic   = "GCIN"
	Version = 1

	HeaderSize = 24
	BodySize   = 8 + gamecontrol.StateSize

	flagSealed = 1 << 0
)

var (
	ErrShortPacket = errors.New("short packet")
	ErrBadMagic    = errors.New("bad magic")
	ErrVersion     = errors.New("unsupported version")
	// ErrSealed is returned for sealed datagrams when no key is configured.
	ErrSealed = errors.New("packet is sealed")
	// ErrNotSealed is returned for plain datagrams when a key is configured.
	ErrNotSealed = errors.New("packet is not sealed")
)

// Packet is one GameControlInput datagram.
type Packet struct {
	Session     uuid.UUID
	Seq         uint32
	ActionFlags uint32
	State       gamecontrol.State
}

func (p *Packet) header(sealed bool) []byte {
	h := make([]byte, HeaderSize)
	copy(h[0:4], Magic)
	h[4] = Version
	if sealed {
		h[5] |= flagSealed
	}
	copy(h[8:24], p.Session[:])
	return h
}

func (p *Packet) body() ([]byte, error) {
	state, err := p.State.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b := make([]byte, 8, BodySize)
	binary.LittleEndian.PutUint32(b[0:4], p.Seq)
	binary.LittleEndian.PutUint32(b[4:8], p.ActionFlags)
	return append(b, state...), nil
}

// Encode renders p, sealed when sealer is not nil.
func Encode(p *Packet, sealer *Sealer) ([]byte, error) {
	header := p.header(sealer != nil)
	body, err := p.body()
	if err != nil {
		return nil, err
	}
	if sealer == nil {
		return append(header, body...), nil
	}
	return sealer.Seal(header, body)
}

// Decode parses a datagram. A configured sealer requires sealed datagrams
// and a missing one rejects them.
func Decode(data []byte, sealer *Sealer) (*Packet, error) {
	if len(data) < HeaderSize {
		return nil, ErrShortPacket
	}
	if string(data[0:4]) != Magic {
		return nil, ErrBadMagic
	}
	if data[4] != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, data[4])
	}
	header, body := data[:HeaderSize], data[HeaderSize:]
	sealed := data[5]&flagSealed != 0
	switch {
	case sealed && sealer == nil:
		return nil, ErrSealed
	case !sealed && sealer != nil:
		return nil, ErrNotSealed
	case sealed:
		plain, err := sealer.Open(header, body)
		if err != nil {
			return nil, err
		}
		body = plain
	}
	if len(body) < BodySize {
		return nil, ErrShortPacket
	}

	p := &Packet{
		Seq:         binary.LittleEndian.Uint32(body[0:4]),
		ActionFlags: binary.LittleEndian.Uint32(body[4:8]),
	}
	copy(p.Session[:], header[8:24])
	if err := p.State.UnmarshalBinary(body[8:]); err != nil {
		return nil, err
	}
	return p, nil
}
