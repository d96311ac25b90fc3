package handler

import (
	"log/slog"

	"github.com/Alia5/gamecontrol/apitypes"
	"github.com/Alia5/gamecontrol/internal/server/api"
)

// Ping reports the server identity and version.
func Ping(version string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return writeJSON(res, apitypes.PingResponse{Server: "gamecontrol", Version: version})
	}
}
