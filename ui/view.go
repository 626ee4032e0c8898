// Package ui holds the client status views: a log-only view and a tcell HUD.
package ui

import (
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// WantHUD resolves the HUD setting (auto, on or off) against stdout.
func WantHUD(setting string) bool {
	switch setting {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

// LogFile opens the file the client logs to while the HUD owns the terminal.
func LogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// NewLogger builds the process logger at the given level.
func NewLogger(f *os.File, level log.Level) *log.Logger {
	return log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}
