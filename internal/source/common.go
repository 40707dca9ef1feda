// Package source parses the on-disk session logs of each supported tool
// into turn and session records.
package source

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/theirongolddev/tokenchar/internal/model"
)

// Untitled is the title of a session with no usable user text.
const Untitled = "(untitled)"

// TitleLimit is the maximum title length in characters before truncation.
const TitleLimit = 80

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// ParseTimestamp parses an ISO-8601 timestamp ("Z" or numeric offset with
// or without a colon, optional fraction, or a bare date) and normalizes it
// to UTC. Timestamps without an offset are read as UTC. It reports false on anything unparseable.
func ParseTimestamp(raw string) (model.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			t := model.NewTime(ts)
			return t, !t.IsZero()
		}
	}
	return model.Time{}, false
}

// ModelFamily classifies a raw model name. Matching is case-insensitive
// and the first family found in order haiku, sonnet, opus, gpt wins.
func ModelFamily(name string) model.Family {
	m := strings.ToLower(name)
	switch {
	case m == "":
		return model.FamilyUnknown
	case strings.Contains(m, "haiku"):
		return model.FamilyHaiku
	case strings.Contains(m, "sonnet"):
		return model.FamilySonnet
	case strings.Contains(m, "opus"):
		return model.FamilyOpus
	case strings.Contains(m, "gpt"):
		return model.FamilyGPT
	}
	return model.FamilyUnknown
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// IsGenuineUserTurn reports whether user message content was typed by a
// person. A string always is. A list of blocks is unless some block is a
// tool_result echo. Any other shape is not.
func IsGenuineUserTurn(content json.RawMessage) bool {
	content = bytes.TrimSpace(content)
	if len(content) == 0 {
		return false
	}
	switch content[0] {
	case '"':
		var s string
		return json.Unmarshal(content, &s) == nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(content, &items); err != nil {
			return false
		}
		for _, item := range items {
			var block contentBlock
			if json.Unmarshal(item, &block) != nil {
				continue
			}
			if block.Type == "tool_result" {
				return false
			}
		}
		return true
	}
	return false
}

// UserText returns the plain text of a user message: the string itself,
// or the text blocks of a block list joined by newlines.
func UserText(content json.RawMessage) string {
	content = bytes.TrimSpace(content)
	if len(content) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(content, &s) == nil {
		return strings.TrimSpace(s)
	}
	var blocks []contentBlock
	if json.Unmarshal(content, &blocks) != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && strings.TrimSpace(b.Text) != "" {
			parts = append(parts, strings.TrimSpace(b.Text))
		}
	}
	return strings.Join(parts, "\n")
}

// Title truncates text to TitleLimit characters with a trailing ellipsis.
// Empty text yields Untitled.
func Title(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return Untitled
	}
	if utf8.RuneCountInString(text) <= TitleLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:TitleLimit]) + "..."
}

// OSFamily is the host platform class used to pick default directories.
type OSFamily int

const (
	OSOther OSFamily = iota
	OSDarwin
	OSLinux
	OSWindows
)

// CurrentOS returns the OSFamily of the running binary.
func CurrentOS() OSFamily {
	switch runtime.GOOS {
	case "darwin":
		return OSDarwin
	case "linux":
		return OSLinux
	case "windows":
		return OSWindows
	}
	return OSOther
}

// DefaultDataDir returns where src keeps its logs on the given platform,
// relative to home. It reports false when the platform is unsupported.
func DefaultDataDir(src model.Source, osf OSFamily, home string) (string, bool) {
	if home == "" {
		return "", false
	}
	switch src {
	case model.SourceCowork:
		switch osf {
		case OSDarwin:
			return filepath.Join(home, "Library", "Application Support", "Claude", "local-agent-mode-sessions"), true
		case OSLinux:
			return filepath.Join(home, ".config", "Claude", "local-agent-mode-sessions"), true
		}
	case model.SourceClaudeCode:
		switch osf {
		case OSDarwin, OSLinux, OSWindows:
			return filepath.Join(home, ".claude", "projects"), true
		}
	case model.SourceCodex:
		switch osf {
		case OSDarwin, OSLinux, OSWindows:
			return filepath.Join(home, ".codex", "sessions"), true
		}
	}
	return "", false
}

// Hostname returns the machine name, or "" when it cannot be determined.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}

// PrimaryModel returns the most frequent model name, ignoring empty and
// synthetic names. Ties go to the name seen first.
func PrimaryModel(models []string) string {
	counts := make(map[string]int)
	var order []string
	for _, m := range models {
		if m == "" || m == model.SyntheticModel {
			continue
		}
		if counts[m] == 0 {
			order = append(order, m)
		}
		counts[m]++
	}
	best := ""
	for _, m := range order {
		if counts[m] > counts[best] {
			best = m
		}
	}
	return best
}

// durationMinutes returns last-first in minutes rounded to one decimal,
// or nil when either end is unknown or the span is not positive.
func durationMinutes(first, last time.Time) *float64 {
	if first.IsZero() || last.IsZero() {
		return nil
	}
	return spanMinutes(last.Sub(first))
}

// spanMinutes is nil for a non-positive span. The check runs before
// rounding, so a span of a few seconds is 0.0 rather than nil.
func spanMinutes(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	m := roundTenth(d.Minutes())
	return &m
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func updateTimeRange(minTime, maxTime *time.Time, ts time.Time) {
	if minTime.IsZero() || ts.Before(*minTime) {
		*minTime = ts
	}
	if maxTime.IsZero() || ts.After(*maxTime) {
		*maxTime = ts
	}
}
