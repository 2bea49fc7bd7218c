package common

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestClampLines(t *testing.T) {
	got := ClampLines("abcdefgh\nab", 4)
	if got != "abcd\nab" {
		t.Fatalf("unexpected clamp result: %q", got)
	}
	if got := ClampLines("abcdef", 0); got != "abcdef" {
		t.Fatalf("zero width should be no-op: %q", got)
	}
	styled := "\x1b[1mbold text\x1b[0m"
	if w := ansi.StringWidth(ClampLines(styled, 4)); w != 4 {
		t.Fatalf("styled line must be clamped by cells, got width %d", w)
	}
}
