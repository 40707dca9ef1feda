// Package stats computes percentile and composition statistics over the
// turns and sessions of one source.
package stats

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/theirongolddev/tokenchar/internal/model"
)

// ToolUseOutputThreshold is the output size at or below which a turn is
// counted as tool-use rather than substantive. It is a heuristic.
const ToolUseOutputThreshold = 10

// Percentile interpolates linearly between the closest ranks of sorted.
// pct is in [0, 100]; sorted must be non-empty.
func Percentile(sorted []float64, pct float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	k := pct / 100 * float64(n-1)
	lower, upper := int(math.Floor(k)), int(math.Ceil(k))
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (k-float64(lower))*(sorted[upper]-sorted[lower])
}

// Summarize returns the distribution of values. Empty input gives zeros.
func Summarize(values []int64) model.Dist {
	if len(values) == 0 {
		return model.Dist{}
	}
	sorted := make([]float64, len(values))
	var sum int64
	for i, v := range values {
		sorted[i] = float64(v)
		sum += v
	}
	sort.Float64s(sorted)
	return model.Dist{
		N:      len(values),
		Sum:    sum,
		Median: Percentile(sorted, 50),
		Mean:   float64(sum) / float64(len(values)),
		P90:    Percentile(sorted, 90),
		P99:    Percentile(sorted, 99),
		Max:    int64(sorted[len(sorted)-1]),
	}
}

// ForSource aggregates one source's records. It returns nil when both
// lists are empty.
func ForSource(turns []model.Turn, sessions []model.Session) *model.SourceStats {
	if len(turns) == 0 && len(sessions) == 0 {
		return nil
	}

	st := &model.SourceStats{
		Sessions: len(sessions),
		Turns:    len(turns),
	}
	if len(sessions) > 0 {
		st.Source = sessions[0].Source
	} else {
		st.Source = turns[0].Source
	}

	dates := lo.FilterMap(sessions, func(s model.Session, _ int) (string, bool) {
		if s.CreatedAt.IsZero() {
			return "", false
		}
		return s.CreatedAt.UTC().Format("2006-01-02"), true
	})
	if len(dates) > 0 {
		st.DateStart, st.DateEnd = lo.Min(dates), lo.Max(dates)
	}

	field := func(get func(model.Turn) int64) []int64 {
		return lo.Map(turns, func(t model.Turn, _ int) int64 { return get(t) })
	}
	input := field(func(t model.Turn) int64 { return t.InputTokens })
	output := field(func(t model.Turn) int64 { return t.OutputTokens })
	cacheRead := field(func(t model.Turn) int64 { return t.CacheReadTokens })
	cacheCreate := field(func(t model.Turn) int64 { return t.CacheCreateTokens })

	st.TurnStats = model.TurnStats{
		CacheRead:       Summarize(cacheRead),
		CacheCreate:     Summarize(cacheCreate),
		Input:           Summarize(input),
		Output:          Summarize(output),
		ReasoningOutput: Summarize(field(func(t model.Turn) int64 { return t.ReasoningOutputTokens })),
		Total:           Summarize(field(func(t model.Turn) int64 { return t.TotalTokens })),
	}

	st.TurnsPerSession = Summarize(lo.Map(sessions, func(s model.Session, _ int) int64 { return int64(s.TurnsAssistant) }))
	st.TokensPerSession = Summarize(lo.Map(sessions, func(s model.Session, _ int) int64 { return s.TotalTokens }))

	grand := st.TurnStats.Total.Sum
	st.Composition = model.Composition{
		CacheRead:   percent(lo.Sum(cacheRead), grand),
		CacheCreate: percent(lo.Sum(cacheCreate), grand),
		Input:       percent(lo.Sum(input), grand),
		Output:      percent(lo.Sum(output), grand),
	}
	st.CacheHitRatio = percent(lo.Sum(cacheRead), lo.Sum(cacheRead)+lo.Sum(input))

	substantive := lo.Filter(output, func(v int64, _ int) bool { return v > ToolUseOutputThreshold })
	toolUse := len(turns) - len(substantive)
	st.TurnProfile = model.TurnProfile{
		ToolUse:        toolUse,
		Substantive:    len(substantive),
		ToolUsePct:     percent(int64(toolUse), int64(len(turns))),
		SubstantivePct: percent(int64(len(substantive)), int64(len(turns))),
	}
	st.SubstantiveOutput = Summarize(substantive)
	st.SubagentTurns = lo.CountBy(turns, func(t model.Turn) bool { return t.IsSubagent })
	st.Projects = projects(sessions)
	return st
}

// projects rolls sessions up per project, sorted by name. The model is
// the last non-empty one seen.
func projects(sessions []model.Session) []model.ProjectStats {
	byName := make(map[string]*model.ProjectStats)
	for _, s := range sessions {
		name := s.Project
		if name == "" {
			name = "(unknown)"
		}
		p, ok := byName[name]
		if !ok {
			p = &model.ProjectStats{Project: name, Model: s.Model}
			byName[name] = p
		}
		p.Sessions++
		p.Turns += s.TurnsAssistant
		p.TotalTokens += s.TotalTokens
		if s.Model != "" {
			p.Model = s.Model
		}
	}

	out := make([]model.ProjectStats, 0, len(byName))
	for _, name := range lo.Keys(byName) {
		out = append(out, *byName[name])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Project < out[j].Project })
	return out
}

// ByModel rolls turns up per model, largest total first. Turns without a
// model are grouped under "(unknown)".
func ByModel(turns []model.Turn) []model.ModelStats {
	groups := lo.GroupBy(turns, func(t model.Turn) string {
		if t.Model == "" {
			return "(unknown)"
		}
		return t.Model
	})
	grand := lo.SumBy(turns, func(t model.Turn) int64 { return t.TotalTokens })

	out := make([]model.ModelStats, 0, len(groups))
	for name, ts := range groups {
		sessions := lo.UniqBy(ts, func(t model.Turn) string {
			return string(t.Source) + "\x00" + t.Machine + "\x00" + t.SessionID
		})
		total := lo.SumBy(ts, func(t model.Turn) int64 { return t.TotalTokens })
		out = append(out, model.ModelStats{
			Model:        name,
			Family:       ts[0].Family,
			Sessions:     len(sessions),
			Turns:        len(ts),
			OutputTokens: lo.SumBy(ts, func(t model.Turn) int64 { return t.OutputTokens }),
			TotalTokens:  total,
			Share:        percent(total, grand),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTokens != out[j].TotalTokens {
			return out[i].TotalTokens > out[j].TotalTokens
		}
		return out[i].Model < out[j].Model
	})
	return out
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
