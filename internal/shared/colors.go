package shared

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Package-level color variables
var (
	ColorInfo    = color.New(color.FgCyan)
	ColorSuccess = color.New(color.FgGreen)
	ColorWarning = color.New(color.FgYellow)
	ColorError   = color.New(color.FgRed)
	ColorDebug   = color.New(color.FgMagenta)
	ColorHeader  = color.New(color.FgBlue, color.Bold)
)

// InitializeColors disables colored output when stdout is not a terminal or
// when the caller asks for plain output.
func InitializeColors(plain bool) {
	color.NoColor = plain || !IsTTY()
}

// IsTTY reports whether stdout is attached to a terminal.
func IsTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
