package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tokenchar/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, info on
// the right, padded to width.
func RenderStatusBar(width int, hints, info string) string {
	t := theme.Active
	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " " + hints
	right := ""
	if info != "" {
		right = info + " "
	}
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return style.Render(left + strings.Repeat(" ", gap) + right)
}
