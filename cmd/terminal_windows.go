//go:build windows

package cmd

import (
	"syscall"
	"unsafe"
)

var (
	kernel32                       = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleScreenBufferInfo = kernel32.NewProc("GetConsoleScreenBufferInfo")
)

type consoleScreenBufferInfo struct {
	Size              [2]int16
	CursorPosition    [2]int16
	Attributes        int16
	Window            struct{ Left, Top, Right, Bottom int16 }
	MaximumWindowSize [2]int16
}

// getTerminalSize returns the console window size, preferring COLUMNS/LINES.
func getTerminalSize() (int, int) {
	if c, r, ok := envTerminalSize(); ok {
		return c, r
	}

	var csbi consoleScreenBufferInfo
	ret, _, _ := procGetConsoleScreenBufferInfo.Call(
		uintptr(syscall.Stdout),
		uintptr(unsafe.Pointer(&csbi)))
	if ret == 0 {
		return 0, 0
	}
	width := int(csbi.Window.Right - csbi.Window.Left + 1)
	height := int(csbi.Window.Bottom - csbi.Window.Top + 1)
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return width, height
}
