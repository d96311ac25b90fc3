//go:build !windows

package util

func IsRunFromGUI() bool {
	// Only Windows double-click launches need the console handling; elsewhere
	// gamecontrol is started from a shell, a desktop file or a service unit.
	return false
}

func HideConsoleWindow() {
	// No-op on non-Windows platforms
}
