// Package preview renders note markdown for terminal display.
package preview

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

const defaultWidth = 100

// Render styles markdown with glamour. When rendering fails the raw text is
// returned unchanged.
func Render(markdown string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return markdown
	}

	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}

// Truncate keeps at most maxLines lines of s.
func Truncate(s string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	return strings.Join(lines[:maxLines], "\n")
}
