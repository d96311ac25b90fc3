package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/frame"
	"github.com/Alia5/gamecontrol/internal/server/api"
)

// ExternalInput feeds agent action flags and extra buttons from outside the
// controllers, e.g. a keyboard.
func ExternalInput(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return api.ErrBadRequest("missing payload")
		}
		var in apitypes.ExternalInputRequest
		if err := json.Unmarshal([]byte(req.Payload), &in); err != nil {
			return api.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
		}
		var out apitypes.ExternalInputResponse
		l.Do(func(g *gamecontrol.GameControl) {
			g.SetExternalInput(in.ActionFlags, in.Buttons)
			s := g.Manager().ExternalState()
			out.Buttons = s.Buttons
			out.Axes = s.Axes
		})
		return writeJSON(res, out)
	}
}

// Focus reports the input focus. A "true" or "false" payload changes it;
// without focus all device input is discarded.
func Focus(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if p := strings.TrimSpace(req.Payload); p != "" {
			focus, err := strconv.ParseBool(p)
			if err != nil {
				return api.ErrBadRequest(fmt.Sprintf("invalid focus: %v", err))
			}
			l.SetFocus(focus)
		}
		return writeJSON(res, apitypes.FocusResponse{Focus: l.Focus()})
	}
}
