package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/log"
	"github.com/Alia5/gamecontrol/internal/transport"
)

// Listen receives controller state datagrams and logs what changes.
type Listen struct {
	Receiver transport.ReceiverConfig `embed:""`
}

// Run is called by Kong when the listen command is executed.
func (l *Listen) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := transport.Listen(l.Receiver, logger, rawLogger)
	if err != nil {
		return err
	}
	return r.Serve(ctx, func(u transport.Update) { logUpdate(logger, u) })
}

func logUpdate(logger *slog.Logger, u transport.Update) {
	l := logger.With("peer", u.Peer, "seq", u.Packet.Seq)
	for _, c := range u.Pressed {
		l.Info("Button down", "channel", c.LocalName(), "name", c.RemoteName())
	}
	for _, c := range u.Released {
		l.Info("Button up", "channel", c.LocalName(), "name", c.RemoteName())
	}
	for _, a := range u.Axes {
		c := gamecontrol.AxisChannel(a.Index, 1)
		l.Debug("Axis", "axis", a.Index, "name", c.RemoteName(), "value", a.Value, "prev", a.Prev)
	}
	if u.Resend {
		l.Log(context.Background(), log.LevelTrace, "Resend", "flags", u.Packet.ActionFlags)
	} else if u.Packet.ActionFlags != 0 {
		l.Debug("Action flags", "flags", u.Packet.ActionFlags)
	}
}
