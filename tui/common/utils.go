package common

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ClampLines cuts every line of text to at most width cells.
func ClampLines(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		if ansi.StringWidth(ln) <= width {
			continue
		}
		lines[i] = ansi.Cut(ln, 0, width)
	}
	return strings.Join(lines, "\n")
}
