package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/theirongolddev/tokenchar/internal/config"
	"github.com/theirongolddev/tokenchar/internal/model"
)

func sampleRecords() ([]model.Turn, []model.Session) {
	tr := model.Turn{Source: model.SourceCodex, Machine: "box", Project: "/srv/api", SessionID: "cx1",
		TurnNumber: 1, Model: "gpt-5-codex", Family: model.FamilyGPT, InputTokens: 200, OutputTokens: 40}
	tr.SumTokens()
	s := model.Session{Source: model.SourceCodex, Machine: "box", Project: "/srv/api", SessionID: "cx1", Title: "t"}
	s.AddTurn(tr)
	return []model.Turn{tr}, []model.Session{s}
}

func testConfig(format string) config.Config {
	cfg := config.DefaultConfig()
	cfg.General.Format = format
	cfg.General.Machine = "box"
	return cfg
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWriteOutput_JSONToStdout(t *testing.T) {
	turns, sessions := sampleRecords()
	var buf bytes.Buffer
	err := writeOutput(&buf, discard, testConfig("json"), "", []model.Source{model.SourceCodex}, turns, sessions)
	if err != nil {
		t.Fatal(err)
	}

	var env struct {
		Version  string   `json:"tokenchar_version"`
		Machine  string   `json:"machine"`
		Sources  []string `json:"sources"`
		Turns    []any    `json:"turns"`
		Sessions []any    `json:"sessions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if env.Version != version || env.Machine != "box" || len(env.Turns) != 1 || len(env.Sessions) != 1 {
		t.Errorf("envelope = %+v", env)
	}
	if diff := cmp.Diff([]string{"codex"}, env.Sources); diff != "" {
		t.Errorf("sources (-want +got):\n%s", diff)
	}
}

func TestWriteOutput_JSONLIntoDirectory(t *testing.T) {
	turns, sessions := sampleRecords()
	dir := t.TempDir()
	var stdout bytes.Buffer
	if err := writeOutput(&stdout, discard, testConfig("jsonl"), dir, nil, turns, sessions); err != nil {
		t.Fatal(err)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should stay empty, got %q", stdout.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "tokenchar.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want turn + session", len(lines))
	}
	if !strings.Contains(lines[1], `"_record_type":"session"`) {
		t.Errorf("second line = %s", lines[1])
	}
}

func TestWriteOutput_CSVNeedsOutput(t *testing.T) {
	turns, sessions := sampleRecords()
	err := writeOutput(&bytes.Buffer{}, discard, testConfig("csv"), "", nil, turns, sessions)
	if err == nil || !strings.Contains(err.Error(), "--output required") {
		t.Errorf("err = %v, want --output required", err)
	}

	prefix := filepath.Join(t.TempDir(), "run")
	if err := writeOutput(&bytes.Buffer{}, discard, testConfig("csv"), prefix, nil, turns, sessions); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{prefix + "_turns.csv", prefix + "_sessions.csv"} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestWriteOutput_TableIgnoresOutput(t *testing.T) {
	turns, sessions := sampleRecords()
	cfg := testConfig("table")
	cfg.General.ASCII = true
	dest := filepath.Join(t.TempDir(), "never.txt")

	var buf bytes.Buffer
	if err := writeOutput(&buf, discard, cfg, dest, nil, turns, sessions); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "OpenAI Codex") {
		t.Errorf("table output missing the source block:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "═") {
		t.Error("ASCII table contains box-drawing glyphs")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("table format must not create the --output file")
	}
}

func TestResolveDest(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		dest string
		want string
	}{
		{"", ""},
		{dir, filepath.Join(dir, "tokenchar.json")},
		{filepath.Join(dir, "out.json"), filepath.Join(dir, "out.json")},
	}
	for _, tt := range tests {
		if got := resolveDest(tt.dest, "tokenchar.json"); got != tt.want {
			t.Errorf("resolveDest(%q) = %q, want %q", tt.dest, got, tt.want)
		}
	}
}

func TestActiveSources(t *testing.T) {
	turns, sessions := sampleRecords()
	all := []model.Source{model.SourceClaudeCode, model.SourceCodex}
	if diff := cmp.Diff([]model.Source{model.SourceCodex}, activeSources(all, turns, sessions)); diff != "" {
		t.Errorf("activeSources (-want +got):\n%s", diff)
	}
	if got := activeSources(all, nil, nil); len(got) != 0 {
		t.Errorf("no records should leave no sources, got %v", got)
	}
}
