package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tokenchar/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders one block per value, scaled to the peak. When there
// are more values than width, adjacent values are merged by their maximum.
func Sparkline(values []int64, width int, color lipgloss.Color) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	values = Downsample(values, width)

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(float64(max(v, 0)) / float64(peak) * float64(len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[min(idx, len(sparkBlocks)-1)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// Downsample reduces values to at most n buckets, keeping each bucket's
// maximum so spikes stay visible.
func Downsample(values []int64, n int) []int64 {
	if len(values) <= n || n <= 0 {
		return values
	}
	out := make([]int64, n)
	for i := range out {
		lo, hi := i*len(values)/n, (i+1)*len(values)/n
		peak := values[lo]
		for _, v := range values[lo+1 : hi] {
			peak = max(peak, v)
		}
		out[i] = peak
	}
	return out
}
