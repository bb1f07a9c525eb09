// Package output provides styled terminal output for the stencil CLI.
//
// All commands print through this package so messages look the same
// everywhere. Styling is handled by lipgloss and hidden from callers.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	verboseMode bool
)

// SetVerbose enables or disables verbose output. Called by the CLI when
// the --verbose flag is set.
func SetVerbose(v bool) {
	verboseMode = v
}

// Success prints a green confirmation message.
func Success(msg string) {
	fmt.Println(successStyle.Render("✓ " + msg))
}

// Error prints a red failure message.
func Error(msg string) {
	fmt.Println(errorStyle.Render("✗ " + msg))
}

// Info prints a cyan status message.
func Info(msg string) {
	fmt.Println(infoStyle.Render(msg))
}

// Warn prints a yellow warning message.
func Warn(msg string) {
	fmt.Println(warnStyle.Render("! " + msg))
}

// Step prints an indented gray sub-item, for next steps and file lists.
func Step(msg string) {
	fmt.Println(stepStyle.Render("  " + msg))
}

// Verbose prints a debug message only when verbose mode is enabled.
func Verbose(msg string) {
	if verboseMode {
		fmt.Println(stepStyle.Render("· " + msg))
	}
}

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the stdout width, defaulting to 80 when stdout is
// not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// Rule prints a gray horizontal separator sized to the terminal.
func Rule() {
	fmt.Println(stepStyle.Render(strings.Repeat("─", TerminalWidth())))
}
