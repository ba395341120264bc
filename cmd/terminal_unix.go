//go:build !windows

package cmd

import (
	"os"
	"syscall"
	"unsafe"
)

// getTerminalSize returns the stdout window size, preferring COLUMNS/LINES.
func getTerminalSize() (int, int) {
	if c, r, ok := envTerminalSize(); ok {
		return c, r
	}

	var ws struct {
		Row, Col, Xpixel, Ypixel uint16
	}
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL,
		os.Stdout.Fd(),
		uintptr(syscall.TIOCGWINSZ),
		uintptr(unsafe.Pointer(&ws)))
	if errno != 0 {
		return 0, 0
	}
	return int(ws.Col), int(ws.Row)
}
