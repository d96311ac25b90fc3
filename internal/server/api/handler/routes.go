package handler

import (
	"github.com/Alia5/gamecontrol/internal/frame"
	"github.com/Alia5/gamecontrol/internal/server/api"
)

// Register wires every command to r.
func Register(r *api.Router, l *frame.Loop, version string) {
	r.Register("ping", Ping(version))
	r.Register("state", State(l))
	r.Register("devices", Devices(l))
	r.Register("channel/active", ActiveChannel(l))
	r.Register("flycam", Flycam(l))
	r.Register("flags", Flags(l))
	r.Register("flags/set", FlagsSet(l))
	r.Register("mappings", Mappings(l))
	r.Register("mappings/reset", MappingsReset(l))
	r.Register("mappings/{group}/set", MappingsSet(l))
	r.Register("action/{name}", Action(l))
	r.Register("action/{name}/set", ActionSet(l))
	r.Register("input/external", ExternalInput(l))
	r.Register("focus", Focus(l))
}
