package source

import (
	"path/filepath"
	"testing"

	"github.com/theirongolddev/tokenchar/internal/schema"
)

// TestRecordInvariants runs every fixture through the schema checks:
// totals equal component sums, reasoning stays within output, and each
// session equals the sum of its turns.
func TestRecordInvariants(t *testing.T) {
	coworkRoot := t.TempDir()
	writeCoworkSession(t, coworkRoot, "abc123", coworkMeta, coworkAudit)
	writeCoworkSession(t, coworkRoot, "empty", `{"sessionId":"local_empty","createdAt":5}`, []string{})

	sets := map[string]Result{
		"cowork":      ExtractCowork(coworkRoot, Options{Machine: "m"}),
		"claude_code": ExtractClaudeCode(claudeDir(t, true), Options{Machine: "m"}),
		"codex":       ExtractCodex(codexDir(t, codexRollout...), Options{Machine: "m"}),
	}

	for name, res := range sets {
		t.Run(name, func(t *testing.T) {
			if len(res.Sessions) == 0 {
				t.Fatal("fixture produced no sessions")
			}
			for _, turn := range res.Turns {
				if errs := schema.ValidateTurn(turn); len(errs) != 0 {
					t.Errorf("turn %s#%d: %v", turn.SessionID, turn.TurnNumber, errs)
				}
			}
			for _, s := range res.Sessions {
				if errs := schema.ValidateSession(s); len(errs) != 0 {
					t.Errorf("session %s: %v", s.SessionID, errs)
				}
				if errs := schema.CheckTotals(s, res.Turns); len(errs) != 0 {
					t.Errorf("session %s totals: %v", s.SessionID, errs)
				}
			}
		})
	}
}

func TestToolResultNeverCountsAsUser(t *testing.T) {
	dir := t.TempDir()
	echo := `{"type":"user","message":{"content":[{"type":"tool_result","tool_use_id":"x","content":"ok"}]}}`
	writeCoworkSession(t, dir, "tr", `{"sessionId":"local_tr"}`, []string{echo, echo})

	cc := t.TempDir()
	writeLines(t, filepath.Join(cc, "-p", "s.jsonl"), echo,
		`{"type":"assistant","message":{"model":"claude-opus-4","usage":{"output_tokens":1}}}`)

	if n := ExtractCowork(dir, Options{Machine: "m"}).Sessions[0].TurnsUser; n != 0 {
		t.Errorf("cowork TurnsUser = %d, want 0", n)
	}
	if n := ExtractClaudeCode(cc, Options{Machine: "m"}).Sessions[0].TurnsUser; n != 0 {
		t.Errorf("claude_code TurnsUser = %d, want 0", n)
	}
}
