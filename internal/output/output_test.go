package output

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/theirongolddev/tokenchar/internal/model"
	"github.com/theirongolddev/tokenchar/internal/schema"
)

func fixture() ([]model.Turn, []model.Session) {
	ts := model.NewTime(time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC))
	id := "a1"
	turns := []model.Turn{
		{Source: model.SourceClaudeCode, Machine: "m", Project: "p", SessionID: "s1", TurnNumber: 1, Timestamp: ts,
			Model: "claude-sonnet-4", Family: model.FamilySonnet, InputTokens: 10, OutputTokens: 5},
		{Source: model.SourceClaudeCode, Machine: "m", Project: "p", SessionID: "s1", TurnNumber: 2,
			Model: "claude-haiku-4", Family: model.FamilyHaiku, OutputTokens: 3, IsSubagent: true, SubagentID: &id},
	}
	for i := range turns {
		turns[i].SumTokens()
	}
	s := model.Session{Source: model.SourceClaudeCode, Machine: "m", Project: "p", SessionID: "s1", Title: "a, \"quoted\" title", CreatedAt: ts}
	for _, t := range turns {
		s.AddTurn(t)
	}
	return turns, []model.Session{s}
}

func TestWriteJSON(t *testing.T) {
	turns, sessions := fixture()
	env := NewEnvelope("1.2.3", "m", []model.Source{model.SourceClaudeCode}, turns, sessions)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, env); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "{\n  \"tokenchar_version\": \"1.2.3\",\n  \"extracted_at\": ") {
		t.Errorf("unexpected envelope head:\n%s", out[:min(len(out), 120)])
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Error("missing trailing newline")
	}

	var back struct {
		Sources  []string         `json:"sources"`
		Turns    []map[string]any `json:"turns"`
		Sessions []map[string]any `json:"sessions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Turns) != 2 || len(back.Sessions) != 1 {
		t.Fatalf("decoded %d turns, %d sessions", len(back.Turns), len(back.Sessions))
	}
	if back.Turns[1]["timestamp"] != nil {
		t.Errorf("zero timestamp = %v, want null", back.Turns[1]["timestamp"])
	}
	if back.Turns[0]["timestamp"] != "2026-02-10T10:00:00+00:00" {
		t.Errorf("timestamp = %v", back.Turns[0]["timestamp"])
	}
	if back.Sessions[0]["duration_min"] != nil {
		t.Errorf("duration_min = %v, want null", back.Sessions[0]["duration_min"])
	}
}

func TestWriteJSON_EmptyListsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewEnvelope("v", "m", nil, nil, nil)); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"sources": []`, `"turns": []`, `"sessions": []`} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("output missing %s:\n%s", key, buf.String())
		}
	}
}

func TestWriteJSONL(t *testing.T) {
	turns, sessions := fixture()
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, turns, sessions); err != nil {
		t.Fatal(err)
	}

	var kinds []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		kinds = append(kinds, rec["_record_type"].(string))
		if rec["session_id"] != "s1" {
			t.Errorf("session_id = %v", rec["session_id"])
		}
	}
	if diff := cmp.Diff([]string{"turn", "turn", "session"}, kinds); diff != "" {
		t.Errorf("record order (-want +got):\n%s", diff)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func TestWriteCSV_Directory(t *testing.T) {
	turns, sessions := fixture()
	dir := t.TempDir()

	paths, err := WriteCSV(dir, turns, sessions)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "turns.csv"), filepath.Join(dir, "sessions.csv")}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}

	turnRows := readCSV(t, paths[0])
	if diff := cmp.Diff(schema.TurnFields, turnRows[0]); diff != "" {
		t.Errorf("turn header (-want +got):\n%s", diff)
	}
	if len(turnRows) != 3 {
		t.Errorf("turn rows = %d, want header + 2", len(turnRows))
	}
	if turnRows[2][14] != "true" || turnRows[2][15] != "a1" {
		t.Errorf("subagent cells = %q, %q", turnRows[2][14], turnRows[2][15])
	}

	sessionRows := readCSV(t, paths[1])
	if sessionRows[1][4] != `a, "quoted" title` {
		t.Errorf("title cell = %q", sessionRows[1][4])
	}
}

func TestWriteCSV_Prefix(t *testing.T) {
	turns, sessions := fixture()
	prefix := filepath.Join(t.TempDir(), "nested", "run")

	paths, err := WriteCSV(prefix, turns, sessions)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{prefix + "_turns.csv", prefix + "_sessions.csv"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestCreate(t *testing.T) {
	w, closeFn, err := Create("")
	if err != nil || w != os.Stdout {
		t.Fatalf("Create(\"\") = %v, %v", w, err)
	}
	if err := closeFn(); err != nil {
		t.Errorf("stdout close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "a", "b", "out.json")
	w, closeFn, err = Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(w, NewEnvelope("v", "m", nil, nil, nil)); err != nil {
		t.Fatal(err)
	}
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("output file not written: %v", err)
	}
}
