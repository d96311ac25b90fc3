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

// Mappings returns all three mapping strings.
func Mappings(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var out apitypes.MappingsResponse
		l.Do(func(g *gamecontrol.GameControl) { out = mappingsDTO(g) })
		return writeJSON(res, out)
	}
}

// MappingsSet replaces one group ("analog", "binary" or "flycam") with the
// payload mapping string and persists the result. Malformed entries unmap
// their action.
func MappingsSet(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		group := req.Params["group"]
		var set func(m *gamecontrol.Manager, s string)
		switch group {
		case "analog":
			set = (*gamecontrol.Manager).SetAnalogMappings
		case "binary":
			set = (*gamecontrol.Manager).SetBinaryMappings
		case "flycam":
			set = (*gamecontrol.Manager).SetFlycamMappings
		default:
			return api.ErrNotFound(fmt.Sprintf("unknown mapping group: %s", group))
		}

		var out apitypes.MappingsResponse
		l.Do(func(g *gamecontrol.GameControl) {
			set(g.Manager(), strings.TrimSpace(req.Payload))
			g.SaveToSettings()
			out = mappingsDTO(g)
		})
		logger.Info("Mappings updated", "group", group)
		return writeJSON(res, out)
	}
}

// MappingsReset restores the default mappings and persists them.
func MappingsReset(l *frame.Loop) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var out apitypes.MappingsResponse
		l.Do(func(g *gamecontrol.GameControl) {
			g.Manager().InitializeMappingsByDefault()
			g.SaveToSettings()
			out = mappingsDTO(g)
		})
		logger.Info("Mappings reset to defaults")
		return writeJSON(res, out)
	}
}
