package frame_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/frame"
	gcTesting "github.com/Alia5/gamecontrol/internal/testing"
)

type fixture struct {
	src       *gcTesting.MockSource
	clock     *gcTesting.Clock
	sender    *gcTesting.MockSender
	settings  *gamecontrol.MemorySettings
	loop      *frame.Loop
	published []frame.Snapshot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		src:      gcTesting.NewMockSource(),
		clock:    gcTesting.NewClock(),
		sender:   &gcTesting.MockSender{},
		settings: gamecontrol.NewMemorySettings(),
	}
	g := gamecontrol.New(gamecontrol.Options{Source: f.src, Settings: f.settings, Now: f.clock.Now})
	g.SetSendToServer(true)
	g.SetControlAgent(true)
	f.loop = frame.New(frame.Options{
		GameControl: g,
		Sender:      f.sender,
		Publish:     func(s frame.Snapshot) { f.published = append(f.published, s) },
	})
	return f
}

func TestStepSendsOnChangeAndResend(t *testing.T) {
	f := newFixture(t)

	f.src.Push(gcTesting.Added(0))
	snap := f.loop.Step()
	assert.True(t, snap.Sent, "first frame is always sent")
	require.Len(t, snap.Devices, 1)
	assert.Equal(t, frame.DeviceInfo{ID: 100, Name: "mock pad 0"}, snap.Devices[0])
	assert.Len(t, f.published, 1)

	snap = f.loop.Step()
	assert.False(t, snap.Sent)
	assert.Len(t, f.published, 1, "unchanged frames are not published")

	f.src.Push(gcTesting.Button(100, gamecontrol.ButtonA, true))
	snap = f.loop.Step()
	assert.True(t, snap.Sent)
	assert.Equal(t, uint32(1<<gamecontrol.ButtonA), snap.Buttons)
	assert.Equal(t, gamecontrol.ButtonChannel(gamecontrol.ButtonA).LocalName(), snap.Active)
	assert.Len(t, f.published, 2)

	f.clock.Advance(gamecontrol.FirstResendPeriod - time.Millisecond)
	assert.False(t, f.loop.Step().Sent)
	f.clock.Advance(time.Millisecond)
	assert.True(t, f.loop.Step().Sent, "resend after the first period")

	sent := f.sender.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, uint32(1<<gamecontrol.ButtonA), sent[2].Buttons)
}

func TestStepActionFlags(t *testing.T) {
	f := newFixture(t)
	f.src.Push(gcTesting.Added(0), gcTesting.Axis(100, gamecontrol.AxisTriggerLeft, 30000))

	snap := f.loop.Step()
	assert.NotZero(t, snap.ActionFlags&gamecontrol.AgentControlUpPos)
	assert.Equal(t, snap.ActionFlags, f.sender.Flags()[0])

	f.loop.Do(func(g *gamecontrol.GameControl) { g.SetControlAgent(false) })
	snap = f.loop.Step()
	assert.Zero(t, snap.ActionFlags)
}

func TestStepFlycam(t *testing.T) {
	f := newFixture(t)
	f.loop.Do(func(g *gamecontrol.GameControl) { g.SetAgentControlMode(gamecontrol.ControlModeFlycam) })
	f.src.Push(gcTesting.Added(0), gcTesting.Axis(100, gamecontrol.AxisLeftY, 16000))

	snap := f.loop.Step()
	assert.Zero(t, snap.ActionFlags, "flycam mode does not move the avatar")
	assert.NotZero(t, snap.Flycam[0])
}

func TestStepWithoutFocus(t *testing.T) {
	f := newFixture(t)
	f.src.Push(gcTesting.Added(0), gcTesting.Button(100, gamecontrol.ButtonB, true))
	require.NotZero(t, f.loop.Step().Buttons)

	f.loop.SetFocus(false)
	assert.False(t, f.loop.Focus())
	f.src.Push(gcTesting.Button(100, gamecontrol.ButtonX, true))
	snap := f.loop.Step()
	assert.Zero(t, snap.Buttons)
	assert.True(t, snap.Sent)
	assert.Zero(t, f.src.Pending())
}

func TestStepSendFailureKeepsPending(t *testing.T) {
	f := newFixture(t)
	f.sender.Err = errors.New("network down")

	assert.False(t, f.loop.Step().Sent)
	f.sender.Err = nil
	assert.True(t, f.loop.Step().Sent, "failed send is retried next frame")
}

func TestStepWithoutSender(t *testing.T) {
	g := gamecontrol.New(gamecontrol.Options{})
	g.SetSendToServer(true)
	l := frame.New(frame.Options{GameControl: g})
	assert.False(t, l.Step().Sent)
	assert.Equal(t, uint64(1), l.Snapshot().Frame)
}

func TestRunSavesAndShutsDown(t *testing.T) {
	src := gcTesting.NewMockSource()
	settings := gamecontrol.NewMemorySettings()
	g := gamecontrol.New(gamecontrol.Options{Source: src, Settings: settings})
	g.SetTranslateAgentActions(true)
	settings.SaveString(gamecontrol.SettingBinaryMappings, "")

	var flushed atomic.Int32
	l := frame.New(frame.Options{
		GameControl: g,
		Interval:    time.Millisecond,
		Flush: func() error {
			flushed.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, l.Run(ctx))

	assert.Equal(t, int32(1), flushed.Load())
	assert.True(t, src.IsClosed())
	assert.True(t, settings.LoadBool(gamecontrol.SettingTranslateActions))
	assert.NotEmpty(t, settings.LoadString(gamecontrol.SettingBinaryMappings))
	assert.NotZero(t, l.Snapshot().Frame)
}
