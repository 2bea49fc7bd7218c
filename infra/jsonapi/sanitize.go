package jsonapi

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitizeForTerminal strips escape sequences and control characters from
// remote text line by line. Tabs become four spaces.
func sanitizeForTerminal(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\t", "    ")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.Map(func(r rune) rune {
			if r < 0x20 || r == 0x7f {
				return -1
			}
			return r
		}, ansi.Strip(ln))
	}
	return strings.Join(lines, "\n")
}
