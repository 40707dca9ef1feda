package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tokenchar/internal/tui/theme"
)

// Tab is one entry of the tab bar.
type Tab struct {
	Name string
	Key  rune
}

func (t Tab) label() string {
	return string(t.Key) + " " + t.Name
}

// TabWidth is the rendered width of tab, padding included.
func TabWidth(tab Tab) int {
	return lipgloss.Width(tab.label()) + 2
}

// RenderTabBar renders tabs on one line with active highlighted. Tabs are
// separated by a single space.
func RenderTabBar(tabs []Tab, active, width int) string {
	t := theme.Active
	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)
	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	parts := make([]string, len(tabs))
	for i, tab := range tabs {
		if i == active {
			parts[i] = activeStyle.Render(tab.label())
		} else {
			parts[i] = inactiveStyle.Render(tab.label())
		}
	}
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(strings.Join(parts, sep))
}

// TabAtX returns the index of the tab under column x, or -1. It follows
// the layout of RenderTabBar.
func TabAtX(tabs []Tab, x int) int {
	pos := 0
	for i, tab := range tabs {
		w := TabWidth(tab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

// TabByKey returns the index of the tab bound to key, or -1.
func TabByKey(tabs []Tab, key rune) int {
	for i, tab := range tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
