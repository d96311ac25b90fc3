package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/frame"
	"github.com/Alia5/gamecontrol/internal/server/api"
)

// Flags returns the user flags.
func Flags(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var out apitypes.FlagsResponse
		l.Do(func(g *gamecontrol.GameControl) { out = flagsDTO(g) })
		return writeJSON(res, out)
	}
}

func parseMode(s string) (gamecontrol.AgentControlMode, error) {
	switch s {
	case "avatar", "":
		return gamecontrol.ControlModeAvatar, nil
	case "flycam":
		return gamecontrol.ControlModeFlycam, nil
	case "none":
		return gamecontrol.ControlModeNone, nil
	}
	return 0, fmt.Errorf("unknown agent control mode %q", s)
}

// FlagsSet updates the flags present in the JSON payload.
func FlagsSet(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return api.ErrBadRequest("missing payload")
		}
		var in apitypes.FlagsUpdateRequest
		if err := json.Unmarshal([]byte(req.Payload), &in); err != nil {
			return api.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		mode := gamecontrol.ControlModeAvatar
		if in.AgentControlMode != nil {
			m, err := parseMode(*in.AgentControlMode)
			if err != nil {
				return api.ErrBadRequest(err.Error())
			}
			mode = m
		}

		var out apitypes.FlagsResponse
		l.Do(func(g *gamecontrol.GameControl) {
			if in.SendToServer != nil {
				g.SetSendToServer(*in.SendToServer)
			}
			if in.ControlAgent != nil {
				g.SetControlAgent(*in.ControlAgent)
			}
			if in.TranslateAgentActions != nil {
				g.SetTranslateAgentActions(*in.TranslateAgentActions)
			}
			if in.AgentControlMode != nil {
				g.SetAgentControlMode(mode)
			}
			out = flagsDTO(g)
		})
		logger.Info("Flags updated", "flags", out)
		return writeJSON(res, out)
	}
}
