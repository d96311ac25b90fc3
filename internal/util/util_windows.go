//go:build windows

package util

import (
	"log/slog"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procGetConsoleProcessList = kernel32.NewProc("GetConsoleProcessList")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procShowWindow            = user32.NewProc("ShowWindow")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
)

// IsRunFromGUI reports whether gamecontrol owns its console alone. Windows
// creates a fresh console for a double-clicked console program, so the only
// attached process is gamecontrol itself; a shell launch shares the shell's
// console.
func IsRunFromGUI() bool {
	if hwnd, _, _ := procGetConsoleWindow.Call(); hwnd == 0 {
		return true
	}
	n := consoleProcessCount()
	slog.Debug("Console processes", "count", n)
	return n == 1
}

// consoleProcessCount returns the number of processes attached to the
// current console, or 0 when it cannot be determined.
func consoleProcessCount() int {
	if err := procGetConsoleProcessList.Find(); err != nil {
		return 0
	}
	var pids [4]uint32
	n, _, _ := procGetConsoleProcessList.Call(uintptr(unsafe.Pointer(&pids[0])), uintptr(len(pids)))
	return int(n)
}

// HideConsoleWindow hides and detaches the console opened for a GUI launch.
func HideConsoleWindow() {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		return
	}
	_, _, _ = procShowWindow.Call(hwnd, windows.SW_HIDE)
	if r, _, err := procFreeConsole.Call(); r == 0 {
		slog.Debug("FreeConsole failed", "error", err)
	}
}
