package handler

import (
	"log/slog"

	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/frame"
	"github.com/Alia5/gamecontrol/internal/server/api"
)

// State returns the final combined state.
func State(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var out apitypes.StateResponse
		l.Do(func(g *gamecontrol.GameControl) {
			s := g.State()
			out.Buttons = s.Buttons
			out.Axes = s.Axes
			out.PrevAxes = s.PrevAxes
			out.NextResendMs = g.NextResendPeriod().Milliseconds()
		})
		snap := l.Snapshot()
		out.Frame = snap.Frame
		out.ActionFlags = snap.ActionFlags
		return writeJSON(res, out)
	}
}

// Devices lists the connected controllers.
func Devices(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		out := apitypes.DevicesListResponse{Devices: []apitypes.Device{}}
		l.Do(func(g *gamecontrol.GameControl) {
			for _, d := range g.Manager().Devices() {
				out.Devices = append(out.Devices, apitypes.Device{ID: int32(d.ID()), Name: d.Name()})
			}
		})
		return writeJSON(res, out)
	}
}

// ActiveChannel returns the channel currently pressed or deflected, used to
// capture a channel for a mapping.
func ActiveChannel(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var ch gamecontrol.InputChannel
		l.Do(func(g *gamecontrol.GameControl) { ch = g.ActiveInputChannel() })
		return writeJSON(res, channelDTO(ch))
	}
}

// Flycam returns the normalized flycam inputs in flycam table order.
func Flycam(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var inputs [gamecontrol.NumFlycamInputs]float32
		l.Do(func(g *gamecontrol.GameControl) { inputs = g.FlycamInputs() })
		return writeJSON(res, apitypes.FlycamResponse{
			Actions: gamecontrol.FlycamActions,
			Inputs:  inputs[:],
		})
	}
}
