// Package ui provides terminal output helpers for exercheck reports.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color function types for styled output.
var (
	Success = color.New(color.FgGreen).SprintFunc()
	Error   = color.New(color.FgRed).SprintFunc()
	Warning = color.New(color.FgYellow).SprintFunc()
	Info    = color.New(color.FgCyan).SprintFunc()
	Bold    = color.New(color.Bold).SprintFunc()
	Dim     = color.New(color.Faint).SprintFunc()
	Header  = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolSkipped = "-"
	SymbolPending = "○"
)

// StatusSuccess returns a green checkmark with optional message.
func StatusSuccess(msg string) string { return withSymbol(Success(SymbolSuccess), msg) }

// StatusError returns a red X with optional message.
func StatusError(msg string) string { return withSymbol(Error(SymbolError), msg) }

// StatusWarning returns a yellow warning with optional message.
func StatusWarning(msg string) string { return withSymbol(Warning(SymbolWarning), msg) }

// StatusSkipped returns a dimmed skip symbol with optional message.
func StatusSkipped(msg string) string { return withSymbol(Dim(SymbolSkipped), msg) }

// StatusPending returns a hollow circle with optional message.
func StatusPending(msg string) string { return withSymbol(Info(SymbolPending), msg) }

func withSymbol(sym, msg string) string {
	if msg == "" {
		return sym
	}
	return sym + " " + msg
}

// SetColorMode applies auto, always or never. Auto enables color only when
// stdout is a terminal and NO_COLOR is unset.
func SetColorMode(mode string) error {
	switch mode {
	case "", "auto":
		_, noColor := os.LookupEnv("NO_COLOR")
		color.NoColor = noColor || !term.IsTerminal(int(os.Stdout.Fd()))
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
	}
	return nil
}

// DisableColors disables all color output.
func DisableColors() { color.NoColor = true }

// EnableColors enables color output.
func EnableColors() { color.NoColor = false }

// IsColorEnabled returns whether colors are currently enabled.
func IsColorEnabled() bool { return !color.NoColor }
