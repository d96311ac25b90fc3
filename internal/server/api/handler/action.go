package handler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/frame"
	"github.com/Alia5/gamecontrol/internal/server/api"
)

// Action returns the type of an action name and its mapped channel.
func Action(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		name := req.Params["name"]
		var out apitypes.ActionResponse
		found := true
		l.Do(func(g *gamecontrol.GameControl) {
			t := g.ActionNameType(name)
			if t == gamecontrol.ActionNameUnknown {
				found = false
				return
			}
			out = apitypes.ActionResponse{Action: name, Type: t.String(), Channel: channelDTO(g.ChannelByAction(name))}
		})
		if !found {
			return api.ErrNotFound(fmt.Sprintf("unknown action: %s", name))
		}
		return writeJSON(res, out)
	}
}

// ActionSet maps an action to the channel named in the payload ("AXIS_0+",
// "BUTTON_3"...). "NONE" unmaps it.
func ActionSet(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		name := req.Params["name"]
		channelName := strings.ToUpper(strings.TrimSpace(req.Payload))
		if channelName == "" {
			return api.ErrBadRequest("missing channel")
		}
		channel := gamecontrol.ChannelByName(channelName)
		if channel.IsNone() && channelName != "NONE" {
			return api.ErrBadRequest(fmt.Sprintf("invalid channel: %s", channelName))
		}

		var out apitypes.ActionResponse
		var err error
		l.Do(func(g *gamecontrol.GameControl) {
			t := g.ActionNameType(name)
			if t == gamecontrol.ActionNameUnknown {
				err = api.ErrNotFound(fmt.Sprintf("unknown action: %s", name))
				return
			}
			if !channel.IsNone() && channel.IsButton() != (t == gamecontrol.ActionNameBinary) {
				err = api.ErrBadRequest(fmt.Sprintf("cannot map %s action %s to %s", t, name, channelName))
				return
			}
			g.UpdateActionMap(name, channel)
			g.SaveToSettings()
			out = apitypes.ActionResponse{Action: name, Type: t.String(), Channel: channelDTO(g.ChannelByAction(name))}
		})
		if err != nil {
			return err
		}
		logger.Info("Action mapped", "action", name, "channel", out.Channel.Channel)
		return writeJSON(res, out)
	}
}
