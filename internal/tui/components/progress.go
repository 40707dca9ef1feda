package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tokenchar/internal/tui/theme"
)

// Segment is one slice of a StackedBar.
type Segment struct {
	Label string
	Value int64
	Color lipgloss.Color
}

// SegmentWidths apportions width cells to segments by value using largest
// remainders, so the widths always sum to width when any value is positive.
func SegmentWidths(segments []Segment, width int) []int {
	widths := make([]int, len(segments))
	var total int64
	for _, s := range segments {
		total += max(s.Value, 0)
	}
	if total == 0 || width <= 0 {
		return widths
	}

	used := 0
	rem := make([]int64, len(segments))
	for i, s := range segments {
		v := max(s.Value, 0) * int64(width)
		widths[i] = int(v / total)
		rem[i] = v % total
		used += widths[i]
	}
	for ; used < width; used++ {
		best := 0
		for i := range rem {
			if rem[i] > rem[best] {
				best = i
			}
		}
		widths[best]++
		rem[best] = -1
	}
	return widths
}

// StackedBar renders segments as one bar of width cells. An all-zero bar
// is drawn empty.
func StackedBar(segments []Segment, width int) string {
	t := theme.Active
	widths := SegmentWidths(segments, width)

	var b strings.Builder
	used := 0
	for i, s := range segments {
		if widths[i] == 0 {
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface).
			Render(strings.Repeat("█", widths[i])))
		used += widths[i]
	}
	if used < width {
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render(strings.Repeat("░", width-used)))
	}
	return b.String()
}

// Legend renders "■ label pct%" entries for segments on one line.
func Legend(segments []Segment) string {
	t := theme.Active
	var total int64
	for _, s := range segments {
		total += max(s.Value, 0)
	}
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		pct := 0.0
		if total > 0 {
			pct = float64(max(s.Value, 0)) / float64(total) * 100
		}
		parts = append(parts,
			lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface).Render("■")+
				label.Render(fmt.Sprintf(" %s %.0f%%", s.Label, pct)))
	}
	return strings.Join(parts, label.Render("  "))
}
