package ui

import (
	"fmt"
	"io"
	"os"
)

// Output destinations. Tests swap them for buffers.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Success prints a success message with a checkmark icon
func Success(msg string) {
	fmt.Fprintln(Stdout, SuccessStyle.Render("✓ "+msg))
}

// Successf prints a formatted success message with a checkmark icon
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Error prints an error message with an X icon
func Error(msg string) {
	fmt.Fprintln(Stderr, ErrorStyle.Render("✗ "+msg))
}

// Warning prints a warning message with a warning icon
func Warning(msg string) {
	fmt.Fprintln(Stdout, WarningStyle.Render("⚠ "+msg))
}

// Warningf prints a formatted warning message with a warning icon
func Warningf(format string, args ...any) {
	Warning(fmt.Sprintf(format, args...))
}

// Info prints an info message with an info icon
func Info(msg string) {
	fmt.Fprintln(Stdout, InfoStyle.Render("ℹ "+msg))
}

// Infof prints a formatted info message with an info icon
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Println prints a plain line
func Println(msg string) {
	fmt.Fprintln(Stdout, msg)
}

// Header prints a section header
func Header(header string) {
	fmt.Fprintln(Stdout, HeaderStyle.Render(header))
}

// Dim renders muted text
func Dim(text string) string {
	return DimStyle.Render(text)
}
