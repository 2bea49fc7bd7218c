package feed

import (
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var authorPalette = []string{
	"#7DC4E4", "#8BD5CA", "#F5A97F", "#C6A0F6", "#EBA0AC",
	"#A6DA95", "#F9E2AF", "#89B4FA", "#F38BA8", "#94E2D5",
}

// authorStyleFor picks a stable color per username.
func authorStyleFor(username string) lipgloss.Style {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(username))))
	idx := int(h.Sum32() % uint32(len(authorPalette)))
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(authorPalette[idx]))
}

// avatarGlyph is the placeholder shown in place of an avatar image: the
// first letter of the username, or "?" when unknown.
func avatarGlyph(username string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(username))
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
