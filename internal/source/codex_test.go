package source

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/theirongolddev/tokenchar/internal/model"
)

var codexRollout = []string{
	`{"timestamp":"2026-02-13T11:26:44.000Z","type":"session_meta","payload":{"id":"019c5841-5d19-71b1-b3d8-3d0f474d31e5","cwd":"/home/user/myproject","originator":"codex_cli_rs","cli_version":"0.98.0"}}`,
	`{"timestamp":"2026-02-13T11:26:45.000Z","type":"turn_context","payload":{"turn_id":"t1","model":"gpt-5.3-codex"}}`,
	`{"timestamp":"2026-02-13T11:26:45.100Z","type":"event_msg","payload":{"type":"task_started","turn_id":"t1"}}`,
	`{"timestamp":"2026-02-13T11:26:45.200Z","type":"event_msg","payload":{"type":"user_message","message":"Build a REST API for the project"}}`,
	`{"timestamp":"2026-02-13T11:26:46.000Z","type":"event_msg","payload":{"type":"token_count","info":null}}`,
	`{"timestamp":"2026-02-13T11:27:30.000Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":17371,"cached_input_tokens":16128,"output_tokens":900,"reasoning_output_tokens":427,"total_tokens":18271}}}}`,
	`{"timestamp":"2026-02-13T11:27:31.000Z","type":"event_msg","payload":{"type":"task_complete","turn_id":"t1"}}`,
	`{"timestamp":"2026-02-13T11:28:00.000Z","type":"turn_context","payload":{"turn_id":"t2","model":"gpt-5.3-codex"}}`,
	`{"timestamp":"2026-02-13T11:28:00.100Z","type":"event_msg","payload":{"type":"task_started","turn_id":"t2"}}`,
	`{"timestamp":"2026-02-13T11:28:00.200Z","type":"event_msg","payload":{"type":"user_message","message":"Add auth"}}`,
	`{"timestamp":"2026-02-13T11:30:00.000Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":22371,"cached_input_tokens":20128,"output_tokens":1100,"reasoning_output_tokens":477}}}}`,
	`{"timestamp":"2026-02-13T11:30:44.000Z","type":"event_msg","payload":{"type":"task_complete","turn_id":"t2"}}`,
}

func codexDir(t *testing.T, lines ...string) string {
	t.Helper()
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "2026", "02", "13", "rollout-2026-02-13T11-26-44-019c5841.jsonl"), lines...)
	return root
}

func TestExtractCodex_TaskMarkers(t *testing.T) {
	res := ExtractCodex(codexDir(t, codexRollout...), Options{Machine: "my-workstation"})
	if len(res.Sessions) != 1 || len(res.Turns) != 2 {
		t.Fatalf("got %d sessions, %d turns; want 1, 2", len(res.Sessions), len(res.Turns))
	}

	t1, t2 := res.Turns[0], res.Turns[1]
	if t1.InputTokens != 1243 || t1.CacheReadTokens != 16128 || t1.InputTokens+t1.CacheReadTokens != 17371 {
		t.Errorf("turn 1 input/cache_read = %d/%d, want 1243/16128", t1.InputTokens, t1.CacheReadTokens)
	}
	if t1.OutputTokens != 900 || t1.ReasoningOutputTokens != 427 {
		t.Errorf("turn 1 output/reasoning = %d/%d, want 900/427", t1.OutputTokens, t1.ReasoningOutputTokens)
	}
	if t2.InputTokens != 1000 || t2.CacheReadTokens != 4000 {
		t.Errorf("turn 2 input/cache_read = %d/%d, want 1000/4000", t2.InputTokens, t2.CacheReadTokens)
	}
	if t2.OutputTokens != 200 || t2.ReasoningOutputTokens != 50 {
		t.Errorf("turn 2 output/reasoning = %d/%d, want 200/50", t2.OutputTokens, t2.ReasoningOutputTokens)
	}
	if got := t1.Timestamp.String(); got != "2026-02-13T11:26:45.100000+00:00" {
		t.Errorf("turn 1 timestamp = %q, want task start", got)
	}

	for i, turn := range res.Turns {
		if turn.TurnNumber != i+1 {
			t.Errorf("turn %d number = %d", i, turn.TurnNumber)
		}
		if turn.Family != model.FamilyGPT || turn.Model != "gpt-5.3-codex" {
			t.Errorf("turn %d model = %q (%q)", i, turn.Model, turn.Family)
		}
		if turn.CacheCreateTokens != 0 || turn.IsSubagent || turn.SubagentID != nil {
			t.Errorf("turn %d has cache_create or subagent fields", i)
		}
		if turn.TotalTokens != turn.InputTokens+turn.OutputTokens+turn.CacheReadTokens {
			t.Errorf("turn %d total = %d, reasoning must not be added", i, turn.TotalTokens)
		}
		if turn.Machine != "my-workstation" || turn.Project != "myproject" {
			t.Errorf("turn %d machine/project = %q/%q", i, turn.Machine, turn.Project)
		}
	}

	s := res.Sessions[0]
	if s.SessionID != "019c5841-5d19-71b1-b3d8-3d0f474d31e5" {
		t.Errorf("SessionID = %q", s.SessionID)
	}
	if s.Title != "Build a REST API for the project" {
		t.Errorf("Title = %q", s.Title)
	}
	if s.Project != "myproject" {
		t.Errorf("Project = %q", s.Project)
	}
	if s.TotalReasoningOutputTokens != 477 {
		t.Errorf("TotalReasoningOutputTokens = %d, want 477", s.TotalReasoningOutputTokens)
	}
	if s.TotalCacheCreateTokens != 0 {
		t.Errorf("TotalCacheCreateTokens = %d", s.TotalCacheCreateTokens)
	}
	if s.TotalInputTokens != 2243 || s.TotalCacheReadTokens != 20128 || s.TotalOutputTokens != 1100 {
		t.Errorf("totals = %d/%d/%d", s.TotalInputTokens, s.TotalCacheReadTokens, s.TotalOutputTokens)
	}
	if s.TurnsUser != 2 || s.TurnsAssistant != 2 {
		t.Errorf("TurnsUser/TurnsAssistant = %d/%d, want 2/2", s.TurnsUser, s.TurnsAssistant)
	}
	if s.DurationMin == nil || *s.DurationMin != 4.0 {
		t.Errorf("DurationMin = %v, want 4.0", s.DurationMin)
	}
	if s.Model != "gpt-5.3-codex" {
		t.Errorf("Model = %q", s.Model)
	}
}

func TestExtractCodex_CounterFallbackAndUserGuard(t *testing.T) {
	dir := codexDir(t,
		`{"timestamp":"2026-02-13T10:00:00Z","type":"session_meta","payload":{"id":"s2","cwd":"C:\\code\\app"}}`,
		`{"timestamp":"2026-02-13T10:00:01Z","type":"turn_context","payload":{"model":"gpt-5"}}`,
		`{"timestamp":"2026-02-13T10:00:02Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":100,"cached_input_tokens":0,"output_tokens":10}}}}`,
		`{"timestamp":"2026-02-13T10:00:03Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":100,"cached_input_tokens":0,"output_tokens":10}}}}`,
		`{"timestamp":"2026-02-13T10:00:04Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":250,"cached_input_tokens":80,"output_tokens":30}}}}`,
	)

	res := ExtractCodex(dir, Options{Machine: "m"})
	if len(res.Turns) != 2 {
		t.Fatalf("turns = %d, want 2 (heartbeat absorbed)", len(res.Turns))
	}
	s := res.Sessions[0]
	if s.TurnsUser != 2 {
		t.Errorf("TurnsUser = %d, want max(0 messages, 2 turns)", s.TurnsUser)
	}
	if s.Project != "app" {
		t.Errorf("Project = %q, want app", s.Project)
	}
	if s.Title != Untitled {
		t.Errorf("Title = %q", s.Title)
	}
	if s.TotalInputTokens+s.TotalCacheReadTokens != 250 || s.TotalOutputTokens != 30 {
		t.Errorf("totals do not reconcile to final counters: %+v", s)
	}
}

func TestExtractCodex_SessionIDFallback(t *testing.T) {
	dir := codexDir(t,
		`{"timestamp":"2026-02-13T10:00:02Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":100,"output_tokens":10}}}}`,
	)
	res := ExtractCodex(dir, Options{Machine: "m"})
	if len(res.Sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(res.Sessions))
	}
	if got := res.Sessions[0].SessionID; got != "rollout-2026-02-13T11-26-44-019c5841" {
		t.Errorf("SessionID = %q, want file stem", got)
	}
	if res.Sessions[0].Project != "(unknown)" {
		t.Errorf("Project = %q", res.Sessions[0].Project)
	}
}

func TestExtractCodex_ZeroTotalsEmitNothing(t *testing.T) {
	dir := codexDir(t,
		`{"timestamp":"2026-02-13T10:00:00Z","type":"session_meta","payload":{"id":"s3","cwd":"/x"}}`,
		`{"timestamp":"2026-02-13T10:00:02Z","type":"event_msg","payload":{"type":"user_message","message":"hello"}}`,
		`{"timestamp":"2026-02-13T10:00:03Z","type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{"input_tokens":0,"output_tokens":0}}}}`,
	)
	res := ExtractCodex(dir, Options{Machine: "m"})
	if len(res.Sessions) != 0 || len(res.Turns) != 0 {
		t.Errorf("got %d sessions, %d turns; want none", len(res.Sessions), len(res.Turns))
	}
}

func TestExtractCodex_IgnoresOtherFiles(t *testing.T) {
	root := codexDir(t, codexRollout...)
	writeLines(t, filepath.Join(root, "2026", "02", "13", "notes.jsonl"), codexRollout...)
	writeLines(t, filepath.Join(root, "history.jsonl"), codexRollout...)

	if got := len(ExtractCodex(root, Options{Machine: "m"}).Sessions); got != 1 {
		t.Errorf("sessions = %d, want only rollout-*.jsonl", got)
	}
}

func TestExtractCodex_MalformedLines(t *testing.T) {
	lines := append([]string{`{not json`, `{"type":"event_msg","payload":"oops"}`}, codexRollout...)
	res := ExtractCodex(codexDir(t, lines...), Options{Machine: "m"})
	if len(res.Turns) != 2 {
		t.Errorf("turns = %d, want 2", len(res.Turns))
	}
	if res.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2", res.ParseErrors)
	}
}

func TestExtractCodex_Idempotent(t *testing.T) {
	dir := codexDir(t, codexRollout...)
	first := ExtractCodex(dir, Options{Machine: "m"})
	second := ExtractCodex(dir, Options{Machine: "m"})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-parse differs (-first +second):\n%s", diff)
	}
}

func TestExtractCodex_MissingDir(t *testing.T) {
	res := ExtractCodex(filepath.Join(t.TempDir(), "absent"), Options{Machine: "m"})
	if len(res.Sessions) != 0 || len(res.Turns) != 0 {
		t.Error("missing dir should yield nothing")
	}
}
