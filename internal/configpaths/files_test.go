package configpaths_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/gamecontrol/internal/configpaths"
)

func setConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("AppData", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return filepath.Join(dir, "gamecontrol")
}

func TestDefaultPaths(t *testing.T) {
	home := setConfigHome(t)

	dir, err := configpaths.DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, home, dir)

	tests := []struct {
		format   string
		expected string
	}{
		{"json", "run.json"},
		{"yml", "run.yaml"},
		{"toml", "run.toml"},
		{"ini", "run.json"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			p, err := configpaths.DefaultNamedConfigPath("run", tt.format)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(home, tt.expected), p)
		})
	}

	p, err := configpaths.DefaultSettingsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "settings.yaml"), p)
}

func TestConfigCandidatePaths(t *testing.T) {
	home := setConfigHome(t)

	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths("my/custom.toml")
	require.NotEmpty(t, tomlPaths)
	assert.Equal(t, "my/custom.toml", tomlPaths[0])
	assert.Contains(t, jsonPaths, filepath.Join(home, "run.json"))
	assert.Contains(t, yamlPaths, filepath.Join(home, "listen.yml"))
	assert.NotContains(t, jsonPaths, "my/custom.toml")

	jsonPaths, _, _ = configpaths.ConfigCandidatePaths("noext")
	assert.Equal(t, "noext", jsonPaths[0])
}
