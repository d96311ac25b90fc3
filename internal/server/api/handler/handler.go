// Package handler implements the control API commands on top of a running
// frame loop. Error logging is centralized in the API server; handlers only
// return errors.
package handler

import (
	"encoding/json"
	"fmt"

	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/gamecontrol"
	"github.com/Alia5/gamecontrol/internal/server/api"
)

func writeJSON(res *api.Response, v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return api.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
	}
	res.JSON = string(out)
	return nil
}

func channelDTO(c gamecontrol.InputChannel) apitypes.Channel {
	return apitypes.Channel{
		Channel: c.LocalName(),
		Remote:  c.RemoteName(),
		Type:    c.Type.String(),
	}
}

func mappingsDTO(g *gamecontrol.GameControl) apitypes.MappingsResponse {
	return apitypes.MappingsResponse{
		Analog: g.AnalogMappings(),
		Binary: g.BinaryMappings(),
		Flycam: g.FlycamMappings(),
	}
}

func flagsDTO(g *gamecontrol.GameControl) apitypes.FlagsResponse {
	mode := g.AgentControlMode().String()
	if mode == "" {
		mode = "avatar"
	}
	return apitypes.FlagsResponse{
		SendToServer:          g.SendToServer(),
		ControlAgent:          g.ControlAgent(),
		TranslateAgentActions: g.TranslateAgentActions(),
		AgentControlMode:      mode,
	}
}
