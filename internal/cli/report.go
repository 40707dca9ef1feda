package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/theirongolddev/tokenchar/internal/model"
	"github.com/theirongolddev/tokenchar/internal/stats"
)

// Charset holds the line-drawing glyphs of the text report.
type Charset struct {
	Double   string
	Thin     string
	Vertical string
	Corner   string
	Dagger   string
	LTE      string
}

var (
	UnicodeCharset = Charset{"═", "─", "│", "└─", "†", "≤"}
	ASCIICharset   = Charset{"=", "-", "|", "+-", "*", "<="}
)

// DetectCharset picks ASCII when the locale names a non-UTF-8 encoding.
// An unset locale keeps Unicode.
func DetectCharset() Charset {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		norm := strings.ToLower(strings.ReplaceAll(v, "-", ""))
		if strings.Contains(norm, "utf8") {
			return UnicodeCharset
		}
		if strings.Contains(v, ".") {
			return ASCIICharset
		}
		return UnicodeCharset
	}
	return UnicodeCharset
}

// Detail levels of the text report. Summary omits the session tables.
const (
	DetailSummary  = "summary"
	DetailSessions = "sessions"
	DetailAll      = "all"
)

// ReportOptions controls WriteReport.
type ReportOptions struct {
	Detail  string
	Charset Charset
}

const (
	ruleWidth = 74
	labelW    = 27
	colW      = 8
)

// WriteReport renders the multi-section text report: one block per source
// with data, project summaries, optional session detail and a grand total.
func WriteReport(w io.Writer, turns []model.Turn, sessions []model.Session, opts ReportOptions) error {
	r := &report{cs: opts.Charset}
	if r.cs == (Charset{}) {
		r.cs = UnicodeCharset
	}

	var all []*model.SourceStats
	for _, src := range model.Sources {
		st := stats.ForSource(
			lo.Filter(turns, func(t model.Turn, _ int) bool { return t.Source == src }),
			lo.Filter(sessions, func(s model.Session, _ int) bool { return s.Source == src }),
		)
		if st != nil {
			all = append(all, st)
		}
	}

	if len(all) == 0 {
		r.line("  No data found.")
		_, err := io.WriteString(w, r.b.String())
		return err
	}

	for _, st := range all {
		r.sourceBlock(st)
		r.projectSummary(st)
	}
	if opts.Detail == DetailSessions || opts.Detail == DetailAll {
		for _, st := range all {
			r.sessionDetail(st.Source, sessions)
		}
	}
	r.grandTotal(all)

	_, err := io.WriteString(w, r.b.String())
	return err
}

type report struct {
	b  strings.Builder
	cs Charset
}

func (r *report) line(format string, args ...any) {
	fmt.Fprintf(&r.b, format, args...)
	r.b.WriteByte('\n')
}

func (r *report) rule(glyph string) string {
	return strings.Repeat(glyph, ruleWidth)
}

func (r *report) distHeader(label string) {
	r.line("  %-*s  %*s  %*s  %*s  %*s  %*s", labelW, label,
		colW, "Median", colW, "Mean", colW, "P90", colW, "P99", colW, "Max")
	sep := strings.Repeat(r.cs.Thin, colW)
	r.line("  %s  %s  %s  %s  %s  %s", strings.Repeat(r.cs.Thin, labelW), sep, sep, sep, sep, sep)
}

func (r *report) distRow(label string, d model.Dist) {
	r.line("  %-*s  %*s  %*s  %*s  %*s  %*s", labelW, label,
		colW, FormatK(d.Median), colW, FormatK(d.Mean), colW, FormatK(d.P90),
		colW, FormatK(d.P99), colW, FormatTokens(d.Max))
}

func (r *report) dashRow(label string) {
	r.line("  %-*s  %*s  %*s  %*s  %*s  %*s", labelW, label, colW, "-", colW, "-", colW, "-", colW, "-", colW, "-")
}

func dateRange(st *model.SourceStats) string {
	switch {
	case st.DateStart == "" || st.DateEnd == "":
		return "unknown dates"
	case st.DateStart == st.DateEnd:
		return st.DateStart
	default:
		return st.DateStart + " to " + st.DateEnd
	}
}

func (r *report) sourceBlock(st *model.SourceStats) {
	codex := st.Source == model.SourceCodex
	v := r.cs.Vertical

	r.line("")
	r.line("  %s", r.rule(r.cs.Double))
	r.line("  %s    %s sessions %s %s turns %s %s", st.Source.Label(),
		FormatNumber(int64(st.Sessions)), v, FormatNumber(int64(st.Turns)), v, dateRange(st))
	r.line("  %s", r.rule(r.cs.Double))
	r.line("")

	ts := st.TurnStats
	if codex {
		r.distHeader("Tokens/Turn (API call)")
	} else {
		r.distHeader("Tokens/Turn (assistant)")
	}
	r.distRow("Cache Read", ts.CacheRead)
	if codex {
		r.distRow("Input (novel)", ts.Input)
		r.distRow("Output (incl. reasoning)", ts.Output)
		if ts.ReasoningOutput.Max > 0 {
			r.distRow("  "+r.cs.Corner+" of which reasoning", ts.ReasoningOutput)
		}
		r.dashRow("Cache Create")
		r.line("    %s not reported by OpenAI API", r.cs.Dagger)
	} else {
		r.distRow("Cache Create", ts.CacheCreate)
		r.distRow("Input (novel)", ts.Input)
		r.distRow("Output", ts.Output)
	}
	r.distRow("Total", ts.Total)
	r.line("")

	if st.Sessions > 0 {
		r.distHeader("Sessions")
		r.distRow("Turns per session", st.TurnsPerSession)
		r.distRow("Tokens per session", st.TokensPerSession)
		r.line("")
	}

	c := st.Composition
	if codex {
		r.line("  Composition: cache_read %s %s input %s %s output %s",
			FormatPercent(c.CacheRead), v, FormatPercent(c.Input), v, FormatPercent(c.Output))
	} else {
		r.line("  Composition: cache_read %s %s cache_create %s %s input %s %s output %s",
			FormatPercent(c.CacheRead), v, FormatPercent(c.CacheCreate), v,
			FormatPercent(c.Input), v, FormatPercent(c.Output))
		r.line("  Cache hit ratio: %s", FormatPercent(st.CacheHitRatio))

		tp := st.TurnProfile
		r.line("  Turn profile: %.0f%% tool-use (%s%d output tokens) %s %.0f%% substantive",
			tp.ToolUsePct, r.cs.LTE, stats.ToolUseOutputThreshold, v, tp.SubstantivePct)
		if so := st.SubstantiveOutput; so.N > 0 {
			r.line("  Substantive output (>%d tokens):  median=%s  mean=%s  p90=%s  max=%s",
				stats.ToolUseOutputThreshold, FormatK(so.Median), FormatK(so.Mean), FormatK(so.P90), FormatTokens(so.Max))
		}
	}

	if st.Source == model.SourceClaudeCode && st.Turns > 0 {
		r.line("  Subagent turns: %s of %s (%.1f%%)", FormatNumber(int64(st.SubagentTurns)),
			FormatNumber(int64(st.Turns)), float64(st.SubagentTurns)/float64(st.Turns)*100)
	}

	if codex {
		r.line("")
		r.line("  * Codex turns = per-API-call when available (Desktop/VSCode sessions),")
		r.line("    per-task for older CLI sessions. Token totals are exact either way.")
	}
	r.line("")
}

func (r *report) projectSummary(st *model.SourceStats) {
	if len(st.Projects) == 0 {
		return
	}
	r.line("  Projects %s%s %s", r.cs.Thin, r.cs.Thin, st.Source.Label())
	r.line("  %s", r.rule(r.cs.Thin))
	r.line("  %-16s  %8s  %6s  %-8s  %12s", "Project", "Sessions", "Turns", "Model", "Total Tokens")
	for _, p := range st.Projects {
		r.line("  %-16s  %8d  %6d  %-8s  %12s", Truncate(ShortProject(p.Project), 16),
			p.Sessions, p.Turns, ShortModel(p.Model), FormatTokens(p.TotalTokens))
	}
	r.line("")
}

func (r *report) sessionDetail(src model.Source, sessions []model.Session) {
	list := lo.Filter(sessions, func(s model.Session, _ int) bool { return s.Source == src })
	if len(list) == 0 {
		return
	}
	// Unknown creation times sort first.
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt.Time) })

	cc := src == model.SourceClaudeCode
	turnsW := 5
	if cc {
		turnsW = 9
	}

	r.line("  Sessions %s%s %s", r.cs.Thin, r.cs.Thin, src.Label())
	r.line("  %s", r.rule(r.cs.Thin))
	header := "U/A"
	if cc {
		header = "U/A(+S)"
	}
	r.line("  %3s  %-14s  %-22s  %-8s  %*s  %8s", "#", "Project", "Title", "Model", turnsW, header, "Total")

	for i, s := range list {
		turns := fmt.Sprintf("%d/%d", s.TurnsUser, s.TurnsAssistant)
		if cc && s.SubagentTurns > 0 {
			turns += fmt.Sprintf("(+%d)", s.SubagentTurns)
		}
		r.line("  %3d  %-14s  %-22s  %-8s  %*s  %8s", i+1,
			Truncate(ShortProject(s.Project), 14), Ellipsize(s.Title, 22),
			ShortModel(s.Model), turnsW, turns, FormatTokens(s.TotalTokens))
	}
	r.line("")
}

func (r *report) grandTotal(all []*model.SourceStats) {
	var sessions, turns int
	var tokens int64
	for _, st := range all {
		sessions += st.Sessions
		turns += st.Turns
		tokens += st.TurnStats.Total.Sum
	}
	v := r.cs.Vertical

	r.line("  %s", r.rule(r.cs.Thin))
	r.line("  GRAND TOTAL   %d sources %s %s sessions %s %s turns %s Total: %s tokens",
		len(all), v, FormatNumber(int64(sessions)), v, FormatNumber(int64(turns)), v, FormatTokens(tokens))

	parts := lo.Map(all, func(st *model.SourceStats, _ int) string {
		label := strings.TrimSpace(strings.SplitN(st.Source.Label(), "(", 2)[0])
		sum := st.TurnStats.Total.Sum
		pct := 0.0
		if tokens > 0 {
			pct = float64(sum) / float64(tokens) * 100
		}
		return fmt.Sprintf("%s: %s (%.0f%%)", label, FormatTokens(sum), pct)
	})
	r.line("  %s", strings.Join(parts, " "+v+"  "))
	r.line("")
}
