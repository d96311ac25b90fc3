package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/log"
)

// ReceiverConfig is the `listen` command configuration.
type ReceiverConfig struct {
	Addr     string `help:"UDP address to receive controller state on" default:":13000" env:"GAMECONTROL_LISTEN_ADDR"`
	Password string `help:"Require datagrams sealed with a key derived from this password" env:"GAMECONTROL_LISTEN_PASSWORD"`
	// Zero values fall back to the defaults below.
	MaxSessions int           `help:"Sender sessions tracked at once" default:"16" env:"GAMECONTROL_LISTEN_MAX_SESSIONS"`
	SessionIdle time.Duration `help:"Forget a sender session after this long without datagrams" default:"30s" env:"GAMECONTROL_LISTEN_SESSION_IDLE"`
}

const (
	DefaultMaxSessions = 16
	DefaultSessionIdle = 30 * time.Second
)

// AxisChange is an axis that differs from the previous datagram.
type AxisChange struct {
	Index uint8
	Value int16
	// Prev is the value the sender reported in PrevAxes.
	Prev int16
}

// Update is one accepted datagram and what changed relative to the previous
// datagram of the same session.
type Update struct {
	Peer    string
	Packet  *Packet
	Pressed []gamecontrol.InputChannel
	// Released buttons.
	Released []gamecontrol.InputChannel
	Axes     []AxisChange
	// Resend is set when nothing changed.
	Resend bool
	// NewSession is set for the first datagram of a session.
	NewSession bool
}

type session struct {
	seq      uint32
	state    gamecontrol.State
	lastSeen time.Time
}

// Receiver decodes datagrams, drops reordered ones and reports changes.
// At most MaxSessions sender sessions are kept; idle ones go first, then
// the least recently seen.
type Receiver struct {
	conn     net.PacketConn
	sealer   *Sealer
	logger   *slog.Logger
	raw      log.RawLogger
	sessions map[uuid.UUID]*session

	maxSessions int
	idle        time.Duration
	now         func() time.Time
	seen        uint64
}

// Listen opens the UDP socket.
func Listen(cfg ReceiverConfig, logger *slog.Logger, raw log.RawLogger) (*Receiver, error) {
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
	conn, err := net.ListenPacket("udp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	logger.Info("Listening for controller state", "addr", conn.LocalAddr().String(), "sealed", sealer != nil)
	r := &Receiver{
		conn:        conn,
		sealer:      sealer,
		logger:      logger,
		raw:         raw,
		sessions:    map[uuid.UUID]*session{},
		maxSessions: cfg.MaxSessions,
		idle:        cfg.SessionIdle,
		now:         time.Now,
	}
	if r.maxSessions <= 0 {
		r.maxSessions = DefaultMaxSessions
	}
	if r.idle <= 0 {
		r.idle = DefaultSessionIdle
	}
	return r, nil
}

// Sessions returns the number of tracked sender sessions.
func (r *Receiver) Sessions() int { return len(r.sessions) }

func (r *Receiver) evict(now time.Time) {
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.idle {
			r.logger.Debug("Forgetting idle session", "session", id)
			delete(r.sessions, id)
		}
	}
	for len(r.sessions) >= r.maxSessions {
		var oldest uuid.UUID
		var oldestSeen time.Time
		first := true
		for id, s := range r.sessions {
			if first || s.lastSeen.Before(oldestSeen) {
				oldest, oldestSeen, first = id, s.lastSeen, false
			}
		}
		r.logger.Debug("Session limit reached, forgetting session", "session", oldest, "limit", r.maxSessions)
		delete(r.sessions, oldest)
	}
}

// Addr returns the bound address.
func (r *Receiver) Addr() net.Addr { return r.conn.LocalAddr() }

func (r *Receiver) Close() error { return r.conn.Close() }

// Serve reads datagrams until ctx is done or the receiver is closed. handle
// is called from the Serve goroutine.
func (r *Receiver) Serve(ctx context.Context, handle func(Update)) error {
	stop := context.AfterFunc(ctx, func() { _ = r.conn.Close() })
	defer stop()

	buf := make([]byte, 2048)
	for {
		n, addr, err := r.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				r.logger.Info("Receiver stopped")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		peer := addr.String()
		r.raw.Log(true, peer, buf[:n])
		if u, ok := r.Process(peer, buf[:n]); ok {
			handle(u)
		}
	}
}

// Process decodes one datagram. It returns false for invalid or stale
// datagrams.
func (r *Receiver) Process(peer string, data []byte) (Update, bool) {
	p, err := Decode(data, r.sealer)
	if err != nil {
		r.logger.Debug("Dropping datagram", "peer", peer, "error", err)
		return Update{}, false
	}

	now := r.now()
	u := Update{Peer: peer, Packet: p}
	prev, ok := r.sessions[p.Session]
	if !ok {
		r.evict(now)
		prev = &session{}
		r.sessions[p.Session] = prev
		u.NewSession = true
		level := slog.LevelDebug
		if r.seen == 0 {
			level = slog.LevelInfo
		}
		r.seen++
		r.logger.Log(context.Background(), level, "New sender session", "peer", peer, "session", p.Session, "sessions", len(r.sessions))
	} else if int32(p.Seq-prev.seq) <= 0 {
		r.logger.Debug("Dropping stale datagram", "peer", peer, "seq", p.Seq, "last", prev.seq)
		return Update{}, false
	}

	changed := p.State.Buttons ^ prev.state.Buttons
	for i := uint8(0); i < gamecontrol.NumButtons; i++ {
		if changed&(1<<i) == 0 {
			continue
		}
		if p.State.Buttons&(1<<i) != 0 {
			u.Pressed = append(u.Pressed, gamecontrol.ButtonChannel(i))
		} else {
			u.Released = append(u.Released, gamecontrol.ButtonChannel(i))
		}
	}
	for i := 0; i < gamecontrol.NumAxes; i++ {
		if p.State.Axes[i] != prev.state.Axes[i] {
			u.Axes = append(u.Axes, AxisChange{Index: uint8(i), Value: p.State.Axes[i], Prev: p.State.PrevAxes[i]})
		}
	}
	u.Resend = !u.NewSession && changed == 0 && len(u.Axes) == 0

	prev.seq = p.Seq
	prev.state = p.State
	prev.lastSeen = now
	return u, true
}
