// Package model defines the turn and session records produced by every source.
package model

// Source identifies which tool wrote a log.
type Source string

const (
	SourceCowork     Source = "cowork"
	SourceClaudeCode Source = "claude_code"
	SourceCodex      Source = "codex"
)

// Sources lists every source in extraction and report order.
var Sources = []Source{SourceCowork, SourceClaudeCode, SourceCodex}

// Label returns the display name used in reports.
func (s Source) Label() string {
	switch s {
	case SourceCowork:
		return "Claude Desktop (Cowork)"
	case SourceClaudeCode:
		return "Claude Code (CLI)"
	case SourceCodex:
		return "OpenAI Codex"
	}
	return string(s)
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceCowork, SourceClaudeCode, SourceCodex:
		return true
	}
	return false
}

// Family is the coarse model family derived from a raw model name.
type Family string

const (
	FamilyHaiku   Family = "haiku"
	FamilySonnet  Family = "sonnet"
	FamilyOpus    Family = "opus"
	FamilyGPT     Family = "gpt"
	FamilyUnknown Family = "unknown"
)

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	switch f {
	case FamilyHaiku, FamilySonnet, FamilyOpus, FamilyGPT, FamilyUnknown:
		return true
	}
	return false
}

// SyntheticModel is the placeholder model name used for turns that never
// reached a real model.
const SyntheticModel = "<synthetic>"

// Turn is one model invocation with its own token accounting.
// Field order matches the serialized column order.
type Turn struct {
	Source     Source `json:"source"`
	Machine    string `json:"machine"`
	Project    string `json:"project"`
	SessionID  string `json:"session_id"`
	TurnNumber int    `json:"turn_number"`
	Timestamp  Time   `json:"timestamp"`
	Model      string `json:"model"`
	Family     Family `json:"model_family"`

	InputTokens           int64 `json:"input_tokens"`
	OutputTokens          int64 `json:"output_tokens"`
	CacheReadTokens       int64 `json:"cache_read_tokens"`
	CacheCreateTokens     int64 `json:"cache_create_tokens"`
	ReasoningOutputTokens int64 `json:"reasoning_output_tokens"`
	TotalTokens           int64 `json:"total_tokens"`

	IsSubagent bool    `json:"is_subagent"`
	SubagentID *string `json:"subagent_id"`
}

// SumTokens recomputes TotalTokens from the four additive components.
// Reasoning tokens are a subset of output and never added.
func (t *Turn) SumTokens() {
	t.TotalTokens = t.InputTokens + t.OutputTokens + t.CacheReadTokens + t.CacheCreateTokens
}

// Session aggregates the turns of one conversation.
type Session struct {
	Source      Source   `json:"source"`
	Machine     string   `json:"machine"`
	Project     string   `json:"project"`
	SessionID   string   `json:"session_id"`
	Title       string   `json:"title"`
	Model       string   `json:"model"`
	CreatedAt   Time     `json:"created_at"`
	DurationMin *float64 `json:"duration_min"`

	TurnsUser      int `json:"turns_user"`
	TurnsAssistant int `json:"turns_assistant"`

	TotalInputTokens           int64 `json:"total_input_tokens"`
	TotalOutputTokens          int64 `json:"total_output_tokens"`
	TotalCacheReadTokens       int64 `json:"total_cache_read_tokens"`
	TotalCacheCreateTokens     int64 `json:"total_cache_create_tokens"`
	TotalReasoningOutputTokens int64 `json:"total_reasoning_output_tokens"`
	TotalTokens                int64 `json:"total_tokens"`

	SubagentTurns int `json:"subagent_turns"`
}

// AddTurn folds t into the session totals. Totals are only ever built
// this way, so they always equal the sums over the session's turns.
func (s *Session) AddTurn(t Turn) {
	s.TurnsAssistant++
	s.TotalInputTokens += t.InputTokens
	s.TotalOutputTokens += t.OutputTokens
	s.TotalCacheReadTokens += t.CacheReadTokens
	s.TotalCacheCreateTokens += t.CacheCreateTokens
	s.TotalReasoningOutputTokens += t.ReasoningOutputTokens
	s.TotalTokens = s.TotalInputTokens + s.TotalOutputTokens +
		s.TotalCacheReadTokens + s.TotalCacheCreateTokens
	if t.IsSubagent {
		s.SubagentTurns++
	}
}
