package stats

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/theirongolddev/tokenchar/internal/model"
)

func TestPercentile(t *testing.T) {
	hundred := make([]float64, 100)
	for i := range hundred {
		hundred[i] = float64(i + 1)
	}

	tests := []struct {
		name   string
		sorted []float64
		pct    float64
		want   float64
	}{
		{"single p50", []float64{42}, 50, 42},
		{"single p99", []float64{42}, 99, 42},
		{"two p50", []float64{10, 20}, 50, 15},
		{"two p0", []float64{10, 20}, 0, 10},
		{"two p100", []float64{10, 20}, 100, 20},
		{"quartile low", []float64{10, 20, 30, 40, 50}, 25, 20},
		{"quartile high", []float64{10, 20, 30, 40, 50}, 75, 40},
		{"1..100 p50", hundred, 50, 50.5},
		{"1..100 p90", hundred, 90, 90.1},
		{"1..100 p99", hundred, 99, 99.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.pct)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentile(%v) = %v, want %v", tt.pct, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(nil); got != (model.Dist{}) {
		t.Errorf("Summarize(nil) = %+v, want zeros", got)
	}

	got := Summarize([]int64{50, 10, 30, 40, 20})
	want := model.Dist{N: 5, Sum: 150, Median: 30, Mean: 30, P90: 46, P99: 49.6, Max: 50}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func sampleTurns() []model.Turn {
	mk := func(in, out, cr, cc int64, sub bool) model.Turn {
		t := model.Turn{
			Source:            model.SourceCowork,
			InputTokens:       in,
			OutputTokens:      out,
			CacheReadTokens:   cr,
			CacheCreateTokens: cc,
			IsSubagent:        sub,
		}
		t.SumTokens()
		return t
	}
	return []model.Turn{
		mk(1000, 5, 200, 100, false),
		mk(1500, 800, 500, 50, false),
		mk(2000, 1200, 800, 200, true),
	}
}

func sampleSessions() []model.Session {
	day := func(d int) model.Time {
		return model.NewTime(time.Date(2026, 2, d, 9, 0, 0, 0, time.UTC))
	}
	return []model.Session{
		{Source: model.SourceCowork, Project: "web", Model: "claude-sonnet-4", CreatedAt: day(3), TurnsAssistant: 2, TotalTokens: 4155},
		{Source: model.SourceCowork, Project: "api", Model: "claude-opus-4", CreatedAt: day(1), TurnsAssistant: 1, TotalTokens: 4200},
		{Source: model.SourceCowork, Project: "web", Model: "", TurnsAssistant: 0},
	}
}

func TestForSource_Empty(t *testing.T) {
	if got := ForSource(nil, nil); got != nil {
		t.Errorf("ForSource(nil, nil) = %+v, want nil", got)
	}
}

func TestForSource(t *testing.T) {
	st := ForSource(sampleTurns(), sampleSessions())
	if st == nil {
		t.Fatal("ForSource returned nil")
	}

	if st.Source != model.SourceCowork || st.Sessions != 3 || st.Turns != 3 {
		t.Errorf("counts = %s/%d/%d, want cowork/3/3", st.Source, st.Sessions, st.Turns)
	}
	if st.DateStart != "2026-02-01" || st.DateEnd != "2026-02-03" {
		t.Errorf("date range = %s..%s, want 2026-02-01..2026-02-03", st.DateStart, st.DateEnd)
	}
	if st.TurnStats.Total.Sum != 8355 {
		t.Errorf("total sum = %d, want 8355", st.TurnStats.Total.Sum)
	}

	c := st.Composition
	if sum := c.CacheRead + c.CacheCreate + c.Input + c.Output; math.Abs(sum-100) > 0.1 {
		t.Errorf("composition sums to %.2f%%, want 100%%", sum)
	}
	// cache_read 1500 / (1500 + input 4500)
	if math.Abs(st.CacheHitRatio-25) > 1e-9 {
		t.Errorf("cache hit ratio = %.4f, want 25", st.CacheHitRatio)
	}

	if st.TurnProfile.ToolUse != 1 || st.TurnProfile.Substantive != 2 {
		t.Errorf("turn profile = %+v, want 1 tool-use, 2 substantive", st.TurnProfile)
	}
	if st.SubstantiveOutput.N != 2 || st.SubstantiveOutput.Sum != 2000 {
		t.Errorf("substantive output = %+v", st.SubstantiveOutput)
	}
	if st.SubagentTurns != 1 {
		t.Errorf("subagent turns = %d, want 1", st.SubagentTurns)
	}
	if st.TurnsPerSession.Max != 2 {
		t.Errorf("turns per session max = %d, want 2", st.TurnsPerSession.Max)
	}

	want := []model.ProjectStats{
		{Project: "api", Sessions: 1, Turns: 1, Model: "claude-opus-4", TotalTokens: 4200},
		{Project: "web", Sessions: 2, Turns: 2, Model: "claude-sonnet-4", TotalTokens: 4155},
	}
	if diff := cmp.Diff(want, st.Projects); diff != "" {
		t.Errorf("projects mismatch (-want +got):\n%s", diff)
	}
}

func TestForSource_ThresholdIsInclusive(t *testing.T) {
	turns := []model.Turn{
		{Source: model.SourceCodex, OutputTokens: ToolUseOutputThreshold},
		{Source: model.SourceCodex, OutputTokens: ToolUseOutputThreshold + 1},
	}
	st := ForSource(turns, nil)
	if st.TurnProfile.ToolUse != 1 || st.TurnProfile.Substantive != 1 {
		t.Errorf("turn profile = %+v, want output == threshold counted as tool-use", st.TurnProfile)
	}
	if st.TurnProfile.ToolUsePct != 50 {
		t.Errorf("tool-use pct = %v, want 50", st.TurnProfile.ToolUsePct)
	}
	if st.DateStart != "" {
		t.Errorf("date start = %q, want empty without sessions", st.DateStart)
	}
}

func TestByModel(t *testing.T) {
	mk := func(id, name string, total int64) model.Turn {
		return model.Turn{Source: model.SourceClaudeCode, SessionID: id, Model: name, Family: model.FamilyOpus,
			InputTokens: total, TotalTokens: total}
	}
	turns := []model.Turn{
		mk("a", "claude-opus-4", 300),
		mk("a", "claude-opus-4", 200),
		mk("b", "claude-opus-4", 100),
		mk("b", "claude-sonnet-4", 400),
		mk("c", "", 0),
	}

	got := ByModel(turns)
	if len(got) != 3 {
		t.Fatalf("ByModel returned %d models, want 3", len(got))
	}
	opus := got[0]
	if opus.Model != "claude-opus-4" || opus.Sessions != 2 || opus.Turns != 3 || opus.TotalTokens != 600 {
		t.Errorf("first model = %+v", opus)
	}
	if math.Abs(opus.Share-60) > 1e-9 {
		t.Errorf("opus share = %v, want 60", opus.Share)
	}
	if got[1].Model != "claude-sonnet-4" || got[2].Model != "(unknown)" {
		t.Errorf("order = %s, %s", got[1].Model, got[2].Model)
	}
	if len(ByModel(nil)) != 0 {
		t.Error("ByModel(nil) should be empty")
	}
}
