package schema

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/theirongolddev/tokenchar/internal/model"
)

// jsonKeys returns the top-level keys of v's JSON encoding in order.
func jsonKeys(t *testing.T, v any) []string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // {
		t.Fatal(err)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			t.Fatal(err)
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			t.Fatal(err)
		}
	}
	return keys
}

func TestFieldsMatchJSONOrder(t *testing.T) {
	if diff := cmp.Diff(TurnFields, jsonKeys(t, model.Turn{})); diff != "" {
		t.Errorf("TurnFields vs Turn JSON (-fields +json):\n%s", diff)
	}
	if diff := cmp.Diff(SessionFields, jsonKeys(t, model.Session{})); diff != "" {
		t.Errorf("SessionFields vs Session JSON (-fields +json):\n%s", diff)
	}
	if n := len(TurnRow(model.Turn{})); n != len(TurnFields) {
		t.Errorf("TurnRow has %d cells, want %d", n, len(TurnFields))
	}
	if n := len(SessionRow(model.Session{})); n != len(SessionFields) {
		t.Errorf("SessionRow has %d cells, want %d", n, len(SessionFields))
	}
}

func validTurn() model.Turn {
	t := model.Turn{
		Source:          model.SourceClaudeCode,
		Machine:         "m",
		Project:         "p",
		SessionID:       "s",
		TurnNumber:      1,
		Timestamp:       model.NewTime(time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)),
		Model:           "claude-sonnet-4",
		Family:          model.FamilySonnet,
		InputTokens:     10,
		OutputTokens:    5,
		CacheReadTokens: 100,
	}
	t.SumTokens()
	return t
}

func TestValidateTurn(t *testing.T) {
	if errs := ValidateTurn(validTurn()); len(errs) != 0 {
		t.Fatalf("valid turn rejected: %v", errs)
	}

	tests := []struct {
		name   string
		mutate func(*model.Turn)
		want   string
	}{
		{"bad total", func(tr *model.Turn) { tr.TotalTokens++ }, "total_tokens"},
		{"reasoning over output", func(tr *model.Turn) { tr.ReasoningOutputTokens = 6 }, "reasoning_output_tokens"},
		{"negative input", func(tr *model.Turn) { tr.InputTokens = -1; tr.SumTokens() }, "input_tokens: negative"},
		{"zero turn number", func(tr *model.Turn) { tr.TurnNumber = 0 }, "turn_number"},
		{"subagent without id", func(tr *model.Turn) { tr.IsSubagent = true }, "subagent_id"},
		{"unknown source", func(tr *model.Turn) { tr.Source = "desktop" }, "source"},
		{"unknown family", func(tr *model.Turn) { tr.Family = "llama" }, "model_family"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTurn()
			tt.mutate(&tr)
			errs := ValidateTurn(tr)
			if !containsPrefix(errs, tt.want) {
				t.Errorf("ValidateTurn errors = %v, want one starting with %q", errs, tt.want)
			}
		})
	}
}

func TestValidateSessionAndTotals(t *testing.T) {
	turns := []model.Turn{validTurn(), validTurn()}
	turns[1].TurnNumber = 2
	turns[1].IsSubagent = true
	id := "a1"
	turns[1].SubagentID = &id

	s := model.Session{Source: model.SourceClaudeCode, Machine: "m", Project: "p", SessionID: "s", Title: "(untitled)"}
	for _, tr := range turns {
		s.AddTurn(tr)
	}
	if errs := ValidateSession(s); len(errs) != 0 {
		t.Errorf("valid session rejected: %v", errs)
	}
	if errs := CheckTotals(s, turns); len(errs) != 0 {
		t.Errorf("CheckTotals = %v, want none", errs)
	}

	other := validTurn()
	other.SessionID = "other"
	if errs := CheckTotals(s, append(turns, other)); len(errs) != 0 {
		t.Errorf("turns of other sessions must be ignored: %v", errs)
	}

	s.TotalInputTokens++
	if errs := CheckTotals(s, turns); !containsPrefix(errs, "total_input_tokens") {
		t.Errorf("CheckTotals missed drift: %v", errs)
	}
	if errs := ValidateSession(s); !containsPrefix(errs, "total_tokens") {
		t.Errorf("ValidateSession missed inconsistent total: %v", errs)
	}

	neg := -0.5
	s2 := model.Session{Source: model.SourceCowork, SessionID: "x", Title: "t", DurationMin: &neg}
	if errs := ValidateSession(s2); !containsPrefix(errs, "duration_min") {
		t.Errorf("negative duration accepted: %v", errs)
	}

	// A span of a few seconds rounds to 0.0 and is still a real duration.
	zero := 0.0
	s2.DurationMin = &zero
	if errs := ValidateSession(s2); containsPrefix(errs, "duration_min") {
		t.Errorf("zero duration rejected: %v", errs)
	}
}

func TestRows(t *testing.T) {
	tr := validTurn()
	row := TurnRow(tr)
	if row[5] != "2026-02-10T10:00:00+00:00" {
		t.Errorf("timestamp cell = %q", row[5])
	}
	if row[14] != "false" || row[15] != "" {
		t.Errorf("subagent cells = %q, %q", row[14], row[15])
	}

	d := 60.0
	s := model.Session{Source: model.SourceCowork, DurationMin: &d}
	srow := SessionRow(s)
	if srow[6] != "" {
		t.Errorf("null created_at cell = %q, want empty", srow[6])
	}
	if srow[7] != "60.0" {
		t.Errorf("duration cell = %q, want 60.0", srow[7])
	}
}

func containsPrefix(errs []string, prefix string) bool {
	for _, e := range errs {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}
