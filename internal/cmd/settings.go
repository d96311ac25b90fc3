package cmd

import (
	"fmt"

	"github.com/Alia5/gamecontrol/internal/configpaths"
	"github.com/Alia5/gamecontrol/internal/settings"
)

// SettingsFile is shared by every command that touches the persisted
// flags and mappings.
type SettingsFile struct {
	Settings string `help:"Settings file (.json, .yaml or .toml); defaults to the user config dir" type:"path" env:"GAMECONTROL_SETTINGS"`
}

func (f SettingsFile) open() (*settings.Store, error) {
	path := f.Settings
	if path == "" {
		p, err := configpaths.DefaultSettingsPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve settings path: %w", err)
		}
		path = p
	}
	return settings.Open(path)
}
