package ui

import (
	"os"

	"golang.org/x/term"
)

const defaultWidth = 100

// TerminalWidth returns the width of stdout, or a default when stdout is
// not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}
