package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/log"
)

// SenderConfig is the send side of the `run` command.
type SenderConfig struct {
	Addr     string `help:"UDP address the controller state is sent to" default:"127.0.0.1:13000" env:"GAMECONTROL_SEND_ADDR"`
	Password string `help:"Seal datagrams with a key derived from this password" env:"GAMECONTROL_SEND_PASSWORD"`
}

// Sender puts the final state on the wire. Every Sender has its own session
// id so a receiver can tell restarts apart.
type Sender struct {
	conn    net.Conn
	session uuid.UUID
	sealer  *Sealer
	logger  *slog.Logger
	raw     log.RawLogger

	mu  sync.Mutex
	seq uint32
}

// NewSender dials cfg.Addr.
func NewSender(cfg SenderConfig, logger *slog.Logger, raw log.RawLogger) (*Sender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	sealer, err := NewPasswordSealer(cfg.Password)
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial("udp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Addr, err)
	}
	s := &Sender{
		conn:    conn,
		session: uuid.New(),
		sealer:  sealer,
		logger:  logger,
		raw:     raw,
	}
	logger.Info("Sending controller state", "addr", conn.RemoteAddr().String(), "session", s.session, "sealed", sealer != nil)
	return s, nil
}

// Session returns the session id carried in every datagram.
func (s *Sender) Session() uuid.UUID { return s.session }

// Send writes one datagram with the next sequence number.
func (s *Sender) Send(state gamecontrol.State, actionFlags uint32) error {
	s.mu.Lock()
	s.seq++
	p := &Packet{Session: s.session, Seq: s.seq, ActionFlags: actionFlags, State: state}
	s.mu.Unlock()

	data, err := Encode(p, s.sealer)
	if err != nil {
		return err
	}
	s.raw.Log(false, s.conn.RemoteAddr().String(), data)
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	s.logger.Log(context.Background(), log.LevelTrace, "Sent state", "seq", p.Seq, "buttons", state.Buttons, "axes", state.Axes)
	return nil
}

func (s *Sender) Close() error {
	return s.conn.Close()
}
