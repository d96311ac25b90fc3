package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "gamecontrol"

// commandBases are the config file base names searched for, besides the
// user supplied path.
var commandBases = []string{"config", "run", "listen"}

// DefaultConfigDir returns the platform-specific configuration directory.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, appName), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appName), nil
		}
		return "", errors.New("HOME not set")
	}
}

// DefaultConfigPath returns the default config file path for the given format using base name "config".
func DefaultConfigPath(format string) (string, error) {
	return DefaultNamedConfigPath("config", format)
}

// DefaultNamedConfigPath returns the default config file path for the given format and base name (e.g., "run").
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, baseName+"."+Ext(format)), nil
}

// DefaultSettingsPath is where the controller flags and mappings are kept
// unless --settings says otherwise.
func DefaultSettingsPath() (string, error) {
	return DefaultNamedConfigPath("settings", "yaml")
}

// Ext maps a format name to its file extension. Unknown formats map to json.
func Ext(format string) string {
	switch format {
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return "json"
	}
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return os.MkdirAll(dir, 0o755)
}

// ConfigCandidatePaths builds candidate paths for config files per format.
// If userPath is provided, it is prioritized and routed to the matching loader by extension.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	add := func(slice *[]string, p string) { *slice = append(*slice, p) }
	addBases := func(dir string, bases []string) {
		for _, base := range bases {
			add(&jsonPaths, filepath.Join(dir, base+".json"))
			add(&yamlPaths, filepath.Join(dir, base+".yaml"))
			add(&yamlPaths, filepath.Join(dir, base+".yml"))
			add(&tomlPaths, filepath.Join(dir, base+".toml"))
		}
	}

	if userPath != "" {
		switch ext := filepath.Ext(userPath); ext {
		case ".json":
			add(&jsonPaths, userPath)
		case ".yaml", ".yml":
			add(&yamlPaths, userPath)
		case ".toml":
			add(&tomlPaths, userPath)
		default:
			add(&jsonPaths, userPath)
		}
	}

	wd, _ := os.Getwd()
	addBases(wd, append([]string{appName}, commandBases...))

	if dir, err := DefaultConfigDir(); err == nil {
		addBases(dir, commandBases)
	}

	if runtime.GOOS != "windows" {
		addBases(filepath.Join("/etc", appName), commandBases)
	}

	return
}
