// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatK formats a token count with a K or M suffix.
// e.g., 1234567 -> "1.2M", 45000 -> "45.0K", 800 -> "800", 12.5 -> "12.5"
func FormatK(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	case v == math.Trunc(v):
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

// FormatTokens is FormatK for integer counts.
func FormatTokens(n int64) string {
	return FormatK(float64(n))
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a value already scaled to 0-100.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatMinutes formats a session duration in minutes.
// e.g., 62.5 -> "1h 2m", 4.0 -> "4m", 0.3 -> "18s", nil -> "-"
func FormatMinutes(m *float64) string {
	if m == nil || *m <= 0 {
		return "-"
	}
	secs := int64(math.Round(*m * 60))
	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// ShortProject returns the basename of an absolute project path and
// passes other names through. Empty becomes "(unknown)".
func ShortProject(name string) string {
	if name == "" || name == "(unknown)" {
		return "(unknown)"
	}
	isWinAbs := len(name) >= 3 && name[1] == ':' && (name[2] == '/' || name[2] == '\\')
	if !strings.HasPrefix(name, "/") && !isWinAbs {
		return name
	}
	trimmed := strings.TrimRight(strings.ReplaceAll(name, "\\", "/"), "/")
	base := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if base == "" || strings.HasSuffix(base, ":") {
		return name
	}
	return base
}

// ShortModel reduces a model name to its family label, or the first 8
// characters when no family matches.
func ShortModel(name string) string {
	lower := strings.ToLower(name)
	for _, fam := range []string{"opus", "sonnet", "haiku", "gpt"} {
		if strings.Contains(lower, fam) {
			return fam
		}
	}
	return Truncate(name, 8)
}

// Truncate cuts s to n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Ellipsize cuts s to n runes, replacing the tail with "..." when it is cut.
func Ellipsize(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
