// Package frame drives a GameControl once per frame: it drains device
// events, computes the action flags and the final state and sends the state
// when it changed or a resend is due.
package frame

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/gamecontrol/gamecontrol"
)

// Sender delivers the final state. transport.Sender implements it.
type Sender interface {
	Send(state gamecontrol.State, actionFlags uint32) error
}

// DeviceInfo describes one connected controller.
type DeviceInfo struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Snapshot is the outcome of one frame.
type Snapshot struct {
	Frame       uint64                               `json:"frame"`
	Buttons     uint32                               `json:"buttons"`
	Axes        [gamecontrol.NumAxes]int16           `json:"axes"`
	ActionFlags uint32                               `json:"actionFlags"`
	Flycam      [gamecontrol.NumFlycamInputs]float32 `json:"flycam"`
	Active      string                               `json:"active,omitempty"`
	Sent        bool                                 `json:"sent"`
	Devices     []DeviceInfo                         `json:"devices"`
}

// sameInput reports whether two snapshots differ only in bookkeeping.
func (s Snapshot) sameInput(o Snapshot) bool {
	if s.Buttons != o.Buttons || s.Axes != o.Axes || s.ActionFlags != o.ActionFlags || s.Flycam != o.Flycam {
		return false
	}
	if len(s.Devices) != len(o.Devices) {
		return false
	}
	for i := range s.Devices {
		if s.Devices[i] != o.Devices[i] {
			return false
		}
	}
	return true
}

// Options configures New.
type Options struct {
	GameControl *gamecontrol.GameControl
	// Sender is optional. Without one the state is computed but never sent.
	Sender   Sender
	Interval time.Duration
	Logger   *slog.Logger
	// Publish is called with every snapshot that differs from the previous
	// one. It runs with the loop lock held and must not call back into the
	// loop.
	Publish func(Snapshot)
	// Flush persists the settings store on shutdown.
	Flush func() error
}

// Loop owns the GameControl. Other goroutines reach it through Do.
type Loop struct {
	mu       sync.Mutex
	gc       *gamecontrol.GameControl
	sender   Sender
	interval time.Duration
	logger   *slog.Logger
	publish  func(Snapshot)
	flush    func() error

	focus bool
	frame uint64
	last  Snapshot
}

const DefaultInterval = 16 * time.Millisecond

func New(opts Options) *Loop {
	l := &Loop{
		gc:       opts.GameControl,
		sender:   opts.Sender,
		interval: opts.Interval,
		logger:   opts.Logger,
		publish:  opts.Publish,
		flush:    opts.Flush,
		focus:    true,
	}
	if l.interval <= 0 {
		l.interval = DefaultInterval
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Run steps the loop every interval until ctx is done, then saves the
// settings and shuts the GameControl down. It must run on the goroutine
// that owns the device source.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("Frame loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return nil
		case <-ticker.C:
			l.Step()
		}
	}
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.gc.SaveToSettings()
	if l.flush != nil {
		if err := l.flush(); err != nil {
			l.logger.Error("Failed to save settings", "error", err)
		}
	}
	l.gc.Shutdown()
	l.logger.Info("Frame loop stopped", "frames", l.frame)
}

// Step runs one frame and returns its snapshot.
func (l *Loop) Step() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.gc
	l.frame++
	g.ProcessEvents(l.focus)

	// Accumulates device input for the final state and the flycam too.
	flags := g.ComputeInternalActionFlags()
	if !g.WillControlAvatar() {
		flags = 0
	}
	var flycam [gamecontrol.NumFlycamInputs]float32
	if g.ControlAgent() && g.AgentControlMode() == gamecontrol.ControlModeFlycam {
		flycam = g.FlycamInputs()
	}

	sent := false
	if g.ComputeFinalStateAndCheckForChanges() && l.sender != nil {
		if err := l.sender.Send(g.State(), flags); err != nil {
			l.logger.Warn("Failed to send controller state", "error", err)
		} else {
			g.UpdateResendPeriod()
			sent = true
		}
	}

	state := g.State()
	snap := Snapshot{
		Frame:       l.frame,
		Buttons:     state.Buttons,
		Axes:        state.Axes,
		ActionFlags: flags,
		Flycam:      flycam,
		Sent:        sent,
		Devices:     devices(g),
	}
	if ch := g.ActiveInputChannel(); !ch.IsNone() {
		snap.Active = ch.LocalName()
	}

	changed := !snap.sameInput(l.last)
	l.last = snap
	if changed && l.publish != nil {
		l.publish(snap)
	}
	return snap
}

func devices(g *gamecontrol.GameControl) []DeviceInfo {
	devs := g.Manager().Devices()
	out := make([]DeviceInfo, 0, len(devs))
	for _, d := range devs {
		out = append(out, DeviceInfo{ID: int32(d.ID()), Name: d.Name()})
	}
	return out
}

// Do runs fn with exclusive access to the GameControl.
func (l *Loop) Do(fn func(g *gamecontrol.GameControl)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.gc)
}

// SetFocus controls whether device input is consumed. Without focus all
// input is discarded.
func (l *Loop) SetFocus(focus bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.focus != focus {
		l.logger.Info("Focus changed", "focus", focus)
	}
	l.focus = focus
}

func (l *Loop) Focus() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.focus
}

// Snapshot returns the result of the last frame.
func (l *Loop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}
