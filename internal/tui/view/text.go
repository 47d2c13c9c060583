package view

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// WrapFunc wraps text to lines at most width cells wide.
type WrapFunc func(string, int) []string

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return strings.Repeat(".", width)
	}
	return runewidth.Truncate(s, width, "...")
}

func padRight(s string, width int) string {
	if gap := width - visibleLen(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func visibleLen(s string) int {
	return runewidth.StringWidth(stripANSIText(s))
}

func stripANSIText(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}
