package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// clearSequences would wipe or home the screen under the TUI.
var clearSequences = strings.NewReplacer(
	"\x1b[2J", "",   // Clear entire screen
	"\x1b[H", "",    // Move cursor to home
	"\x1b[0;0H", "", // Move cursor to 0,0
	"\x1b[1;1H", "", // Move cursor to 1,1
)

// splitOutput turns script output into display lines. Colors survive;
// screen control sequences do not.
func splitOutput(text string) []string {
	text = clearSequences.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// fitLine truncates line to width cells, ignoring escape codes.
func fitLine(line string, width int) string {
	if width <= 0 || ansi.StringWidth(line) <= width {
		return line
	}
	return ansi.Truncate(line, width, "…")
}
