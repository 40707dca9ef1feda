// Package schema fixes the column order of turn and session records and
// checks records against the invariants every source must uphold.
package schema

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/tokenchar/internal/model"
)

// TurnFields is the column order of a turn. It matches the JSON keys.
var TurnFields = []string{
	"source",
	"machine",
	"project",
	"session_id",
	"turn_number",
	"timestamp",
	"model",
	"model_family",
	"input_tokens",
	"output_tokens",
	"cache_read_tokens",
	"cache_create_tokens",
	"reasoning_output_tokens",
	"total_tokens",
	"is_subagent",
	"subagent_id",
}

// SessionFields is the column order of a session. It matches the JSON keys.
var SessionFields = []string{
	"source",
	"machine",
	"project",
	"session_id",
	"title",
	"model",
	"created_at",
	"duration_min",
	"turns_user",
	"turns_assistant",
	"total_input_tokens",
	"total_output_tokens",
	"total_cache_read_tokens",
	"total_cache_create_tokens",
	"total_reasoning_output_tokens",
	"total_tokens",
	"subagent_turns",
}

// TurnRow renders t as CSV cells in TurnFields order. Nulls are empty.
func TurnRow(t model.Turn) []string {
	subagent := ""
	if t.SubagentID != nil {
		subagent = *t.SubagentID
	}
	return []string{
		string(t.Source),
		t.Machine,
		t.Project,
		t.SessionID,
		strconv.Itoa(t.TurnNumber),
		t.Timestamp.String(),
		t.Model,
		string(t.Family),
		itoa(t.InputTokens),
		itoa(t.OutputTokens),
		itoa(t.CacheReadTokens),
		itoa(t.CacheCreateTokens),
		itoa(t.ReasoningOutputTokens),
		itoa(t.TotalTokens),
		strconv.FormatBool(t.IsSubagent),
		subagent,
	}
}

// SessionRow renders s as CSV cells in SessionFields order. Nulls are empty.
func SessionRow(s model.Session) []string {
	duration := ""
	if s.DurationMin != nil {
		duration = strconv.FormatFloat(*s.DurationMin, 'f', 1, 64)
	}
	return []string{
		string(s.Source),
		s.Machine,
		s.Project,
		s.SessionID,
		s.Title,
		s.Model,
		s.CreatedAt.String(),
		duration,
		strconv.Itoa(s.TurnsUser),
		strconv.Itoa(s.TurnsAssistant),
		itoa(s.TotalInputTokens),
		itoa(s.TotalOutputTokens),
		itoa(s.TotalCacheReadTokens),
		itoa(s.TotalCacheCreateTokens),
		itoa(s.TotalReasoningOutputTokens),
		itoa(s.TotalTokens),
		strconv.Itoa(s.SubagentTurns),
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// ValidateTurn returns every invariant t violates; nil means valid.
func ValidateTurn(t model.Turn) []string {
	var errs []string
	if !t.Source.Valid() {
		errs = append(errs, fmt.Sprintf("source: unknown %q", t.Source))
	}
	if t.SessionID == "" {
		errs = append(errs, "session_id: empty")
	}
	if t.TurnNumber < 1 {
		errs = append(errs, fmt.Sprintf("turn_number: %d < 1", t.TurnNumber))
	}
	if !t.Family.Valid() {
		errs = append(errs, fmt.Sprintf("model_family: unknown %q", t.Family))
	}
	errs = append(errs, nonNegative(
		count{"input_tokens", t.InputTokens},
		count{"output_tokens", t.OutputTokens},
		count{"cache_read_tokens", t.CacheReadTokens},
		count{"cache_create_tokens", t.CacheCreateTokens},
		count{"reasoning_output_tokens", t.ReasoningOutputTokens},
	)...)
	if sum := t.InputTokens + t.OutputTokens + t.CacheReadTokens + t.CacheCreateTokens; t.TotalTokens != sum {
		errs = append(errs, fmt.Sprintf("total_tokens: %d != component sum %d", t.TotalTokens, sum))
	}
	if t.ReasoningOutputTokens > t.OutputTokens {
		errs = append(errs, fmt.Sprintf("reasoning_output_tokens: %d > output_tokens %d", t.ReasoningOutputTokens, t.OutputTokens))
	}
	if t.IsSubagent != (t.SubagentID != nil) {
		errs = append(errs, "subagent_id: must be set exactly when is_subagent")
	}
	return errs
}

// ValidateSession returns every invariant s violates; nil means valid.
func ValidateSession(s model.Session) []string {
	var errs []string
	if !s.Source.Valid() {
		errs = append(errs, fmt.Sprintf("source: unknown %q", s.Source))
	}
	if s.SessionID == "" {
		errs = append(errs, "session_id: empty")
	}
	if s.Title == "" {
		errs = append(errs, "title: empty")
	}
	if s.DurationMin != nil && *s.DurationMin < 0 {
		errs = append(errs, fmt.Sprintf("duration_min: %v negative", *s.DurationMin))
	}
	if s.TurnsUser < 0 || s.TurnsAssistant < 0 || s.SubagentTurns < 0 {
		errs = append(errs, "turn counts: negative")
	}
	if s.SubagentTurns > s.TurnsAssistant {
		errs = append(errs, fmt.Sprintf("subagent_turns: %d > turns_assistant %d", s.SubagentTurns, s.TurnsAssistant))
	}
	errs = append(errs, nonNegative(
		count{"total_input_tokens", s.TotalInputTokens},
		count{"total_output_tokens", s.TotalOutputTokens},
		count{"total_cache_read_tokens", s.TotalCacheReadTokens},
		count{"total_cache_create_tokens", s.TotalCacheCreateTokens},
		count{"total_reasoning_output_tokens", s.TotalReasoningOutputTokens},
	)...)
	sum := s.TotalInputTokens + s.TotalOutputTokens + s.TotalCacheReadTokens + s.TotalCacheCreateTokens
	if s.TotalTokens != sum {
		errs = append(errs, fmt.Sprintf("total_tokens: %d != component sum %d", s.TotalTokens, sum))
	}
	return errs
}

// CheckTotals compares s against the turns that belong to it and returns
// every total that does not equal the sum over those turns.
func CheckTotals(s model.Session, turns []model.Turn) []string {
	var want model.Session
	for _, t := range turns {
		if t.Source == s.Source && t.Machine == s.Machine && t.SessionID == s.SessionID {
			want.AddTurn(t)
		}
	}

	var errs []string
	check := func(field string, got, exp int64) {
		if got != exp {
			errs = append(errs, fmt.Sprintf("%s: %d != turn sum %d", field, got, exp))
		}
	}
	check("turns_assistant", int64(s.TurnsAssistant), int64(want.TurnsAssistant))
	check("total_input_tokens", s.TotalInputTokens, want.TotalInputTokens)
	check("total_output_tokens", s.TotalOutputTokens, want.TotalOutputTokens)
	check("total_cache_read_tokens", s.TotalCacheReadTokens, want.TotalCacheReadTokens)
	check("total_cache_create_tokens", s.TotalCacheCreateTokens, want.TotalCacheCreateTokens)
	check("total_reasoning_output_tokens", s.TotalReasoningOutputTokens, want.TotalReasoningOutputTokens)
	check("total_tokens", s.TotalTokens, want.TotalTokens)
	check("subagent_turns", int64(s.SubagentTurns), int64(want.SubagentTurns))
	return errs
}

type count struct {
	name string
	n    int64
}

func nonNegative(counts ...count) []string {
	var errs []string
	for _, c := range counts {
		if c.n < 0 {
			errs = append(errs, fmt.Sprintf("%s: negative %d", c.name, c.n))
		}
	}
	return errs
}
