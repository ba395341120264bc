package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// canInitializeTUI tests if tcell can actually be initialized
func canInitializeTUI() bool {
	screen, err := tcell.NewScreen()
	if err != nil {
		return false
	}
	if err := screen.Init(); err != nil {
		return false
	}
	screen.Fini()
	return true
}

// needsPseudoTTY reports whether /dev/tty cannot be opened, which is the
// case under some process supervisors and `docker exec` without -t.
func needsPseudoTTY() bool {
	if file, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		file.Close()
		return false
	}
	return true
}

// runWithPseudoTTY re-executes the command under script(1) so tcell gets a tty.
func runWithPseudoTTY() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmdArgs := append([]string{}, os.Args[1:]...)
	hasForce := false
	for _, arg := range cmdArgs {
		if arg == "--force-tui" {
			hasForce = true
			break
		}
	}
	if !hasForce {
		cmdArgs = append(cmdArgs, "--force-tui")
	}

	quoted := make([]string, len(cmdArgs))
	for i, arg := range cmdArgs {
		quoted[i] = fmt.Sprintf("%q", arg)
	}
	fullCmd := fmt.Sprintf("TERM=%s %q %s", os.Getenv("TERM"), executable, strings.Join(quoted, " "))

	scriptCmd := exec.Command("script", "-qec", fullCmd, "/dev/null")
	scriptCmd.Stdin = os.Stdin
	scriptCmd.Stdout = os.Stdout
	scriptCmd.Stderr = os.Stderr
	scriptCmd.Env = os.Environ()
	return scriptCmd.Run()
}

// tuiDecision is the outcome of probing the terminal.
type tuiDecision int

const (
	tuiHeadless tuiDecision = iota
	tuiDirect
	tuiPseudoTTY
)

func decideTUI(disabled, forced bool) tuiDecision {
	switch {
	case disabled:
		return tuiHeadless
	case forced || canInitializeTUI():
		return tuiDirect
	case needsPseudoTTY():
		return tuiPseudoTTY
	default:
		return tuiHeadless
	}
}

// getTerminalInfo returns detailed terminal information
func getTerminalInfo() string {
	var info []string

	if term := os.Getenv("TERM"); term == "" {
		info = append(info, "TERM=<not set>")
	} else {
		info = append(info, "TERM="+term)
	}
	if termProgram := os.Getenv("TERM_PROGRAM"); termProgram != "" {
		info = append(info, "TERM_PROGRAM="+termProgram)
	}
	if width, height := getTerminalSize(); width > 0 && height > 0 {
		info = append(info, fmt.Sprintf("Size=%dx%d", width, height))
	}
	info = append(info, "TTY="+yesNo(isTerminal()))
	info = append(info, "Colors="+yesNo(supportsColors()))

	return strings.Join(info, ", ")
}

func envTerminalSize() (cols, rows int, ok bool) {
	c, err := strconv.Atoi(os.Getenv("COLUMNS"))
	if err != nil || c <= 0 {
		return 0, 0, false
	}
	r, err := strconv.Atoi(os.Getenv("LINES"))
	if err != nil || r <= 0 {
		return 0, 0, false
	}
	return c, r, true
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// supportsColors checks if terminal supports colors
func supportsColors() bool {
	if os.Getenv("COLORTERM") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	for _, hint := range []string{"color", "256", "truecolor", "24bit", "xterm", "screen", "tmux", "linux", "ansi"} {
		if strings.Contains(term, hint) {
			return true
		}
	}
	return false
}

// getWorkingDir returns the current working directory, falling back to the
// executable's directory.
func getWorkingDir() string {
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolvePathRelativeToBase resolves a possibly relative path against a base directory.
// Absolute paths are returned unchanged.
func resolvePathRelativeToBase(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, strings.TrimPrefix(p, "./"))
}

// openLogFile opens logs/<name> under the working directory for appending.
// It returns nil when the file cannot be created.
func openLogFile(name string) *os.File {
	logDir := filepath.Join(getWorkingDir(), "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	return f
}

// commandLogger returns the logger for a command. While the console owns the
// screen everything goes to logs/<file> and only errors reach stderr.
func commandLogger(prefix, file string, tui bool) (*log.Logger, func()) {
	if !tui {
		return log.New(os.Stderr, prefix, log.LstdFlags), func() {}
	}
	f := openLogFile(file)
	if f == nil {
		return log.New(&errorFilterWriter{os.Stderr}, prefix, log.LstdFlags), func() {}
	}
	return log.New(io.MultiWriter(f, &errorFilterWriter{os.Stderr}), prefix, log.LstdFlags), func() { f.Close() }
}

// uiLogger returns a file-only logger for the console itself.
func uiLogger(file string) (*log.Logger, func()) {
	f := openLogFile(file)
	if f == nil {
		return log.New(io.Discard, "[UI] ", log.LstdFlags), func() {}
	}
	l := log.New(f, "[UI] ", log.LstdFlags)
	l.Printf("UI logger initialized (path=%s)", f.Name())
	return l, func() { f.Close() }
}

// errorFilterWriter only writes error messages to the underlying writer
type errorFilterWriter struct {
	writer io.Writer
}

func (w *errorFilterWriter) Write(p []byte) (n int, err error) {
	lc := strings.ToLower(string(p))

	// context cancellation on quit is not worth showing
	if strings.Contains(lc, "context canceled") {
		return len(p), nil
	}

	if strings.Contains(lc, "error") ||
		strings.Contains(lc, "failed") ||
		strings.Contains(lc, "panic") {
		return w.writer.Write(p)
	}
	return len(p), nil
}
