package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Events: bold cyan
	colorEvent = color.New(color.FgCyan, color.Bold)

	// All-day events: magenta, they are not on the clock
	colorAllDay = color.New(color.FgMagenta)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Success messages
	colorOK = color.New(color.FgGreen)

	// Muted: ids, durations and other secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatEvent(s string) string {
	return colorEvent.Sprint(s)
}

func formatAllDay(s string) string {
	return colorAllDay.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatOK(s string) string {
	return colorOK.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
