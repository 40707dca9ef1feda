// Package tui provides the interactive Bubble Tea session browser.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/theirongolddev/tokenchar/internal/cli"
	"github.com/theirongolddev/tokenchar/internal/model"
	"github.com/theirongolddev/tokenchar/internal/pipeline"
	"github.com/theirongolddev/tokenchar/internal/tui/components"
	"github.com/theirongolddev/tokenchar/internal/tui/theme"
)

// DataLoadedMsg is sent when the extraction finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	LoadTime time.Duration
}

// ProgressMsg reports how many sources have been read.
type ProgressMsg struct {
	Current int
	Total   int
}

// sourceTabs are the source filters; index 0 shows every source and
// index i shows model.Sources[i-1].
var sourceTabs = []components.Tab{
	{Name: "All", Key: '0'},
	{Name: "Cowork", Key: '1'},
	{Name: "Claude Code", Key: '2'},
	{Name: "Codex", Key: '3'},
}

const (
	minTerminalWidth = 60
	compactWidth     = 110
	maxContentWidth  = 180

	headerHeight = 2 // tab bar + filter line
	statusHeight = 1
	statsHeight  = 4
)

// App is the root Bubble Tea model.
type App struct {
	opts        pipeline.Options
	project     string
	modelFilter string

	// Data
	turns       []model.Turn
	sessions    []model.Session // after project/model filters, newest first
	visible     []model.Session // sessions of the active source tab
	loaded      bool
	loadTime    time.Duration
	parseErrors int

	// UI state
	width        int
	height       int
	activeSrc    int
	showHelp     bool
	focusDetail  bool
	detailScroll int
	list         table.Model

	// Loading
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

// NewApp returns a browser that extracts with opts and narrows the result
// by the project and model substrings.
func NewApp(opts pipeline.Options, project, modelFilter string) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:        opts,
		project:     project,
		modelFilter: modelFilter,
		list:        newSessionTable(),
		spinner:     sp,
		loadSub:     make(chan tea.Msg, 1),
	}
}

func newSessionTable() table.Model {
	t := theme.Active
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.Accent).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary)
	styles.Selected = styles.Selected.
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true)

	return table.New(
		table.WithColumns(sessionColumns(60)),
		table.WithFocused(true),
		table.WithStyles(styles),
	)
}

// sessionColumns sizes the list columns to fill width. The project column
// takes whatever the fixed columns leave.
func sessionColumns(width int) []table.Column {
	cols := []table.Column{
		{Title: "Created", Width: 12},
		{Title: "Source", Width: 6},
		{Title: "Project", Width: 0},
		{Title: "Turns", Width: 5},
		{Title: "Tokens", Width: 7},
		{Title: "Dur", Width: 7},
	}
	fixed := 0
	for _, c := range cols {
		fixed += c.Width + 2 // cell padding
	}
	cols[2].Width = max(width-fixed-2, 8)
	return cols
}

func sourceTag(src model.Source) string {
	switch src {
	case model.SourceCowork:
		return "cowork"
	case model.SourceClaudeCode:
		return "claude"
	case model.SourceCodex:
		return "codex"
	}
	return string(src)
}

func sessionRow(s model.Session) table.Row {
	created := "-"
	if !s.CreatedAt.IsZero() {
		created = s.CreatedAt.UTC().Format("Jan 02 15:04")
	}
	return table.Row{
		created,
		sourceTag(s.Source),
		cli.ShortProject(s.Project),
		cli.FormatNumber(int64(s.TurnsAssistant)),
		cli.FormatTokens(s.TotalTokens),
		cli.FormatMinutes(s.DurationMin),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.loadSub),
		a.spinner.Tick,
	)
}

// filterSessions returns sessions of the source tab idx.
func filterSessions(sessions []model.Session, idx int) []model.Session {
	if idx <= 0 || idx > len(model.Sources) {
		return sessions
	}
	src := model.Sources[idx-1]
	return lo.Filter(sessions, func(s model.Session, _ int) bool { return s.Source == src })
}

func (a *App) setData(res *pipeline.LoadResult) {
	turns, sessions := res.Turns, res.Sessions
	if a.project != "" {
		turns, sessions = pipeline.FilterByProject(turns, sessions, a.project)
	}
	if a.modelFilter != "" {
		turns, sessions = pipeline.FilterByModel(turns, sessions, a.modelFilter)
	}
	a.turns = turns
	a.sessions = pipeline.Newest(sessions)
	a.parseErrors = res.ParseErrors
	a.refilter()
}

func (a *App) refilter() {
	a.visible = filterSessions(a.sessions, a.activeSrc)
	a.list.SetRows(lo.Map(a.visible, func(s model.Session, _ int) table.Row { return sessionRow(s) }))
	a.list.SetCursor(0)
	a.detailScroll = 0
	if len(a.visible) == 0 {
		a.focusDetail = false
	}
}

func (a *App) setSource(idx int) {
	if idx < 0 || idx >= len(sourceTabs) || idx == a.activeSrc {
		return
	}
	a.activeSrc = idx
	a.refilter()
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

func (a App) contentHeight() int {
	return max(a.height-headerHeight-statusHeight-statsHeight, 5)
}

func (a App) listWidth() int {
	cw := a.contentWidth()
	if a.isCompactLayout() {
		return cw
	}
	return cw * 11 / 20
}

func (a *App) resize() {
	inner := components.CardInnerWidth(a.listWidth())
	a.list.SetColumns(sessionColumns(inner))
	a.list.SetWidth(inner)
	a.list.SetHeight(max(a.contentHeight()-3, 3)) // card border + title
}

// selected returns the session under the cursor.
func (a App) selected() (model.Session, bool) {
	i := a.list.Cursor()
	if i < 0 || i >= len(a.visible) {
		return model.Session{}, false
	}
	return a.visible[i], true
}

func (a App) halfPage() int {
	return max(a.contentHeight()/2, 1)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.focusDetail {
				a.detailScroll = max(a.detailScroll-1, 0)
			} else {
				a.moveCursor(-1)
			}
		case tea.MouseButtonWheelDown:
			if a.focusDetail {
				a.detailScroll++
			} else {
				a.moveCursor(1)
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				a.setSource(components.TabAtX(sourceTabs, msg.X))
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		if msg.Result != nil {
			a.setData(msg.Result)
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	before := a.list.Cursor()
	if delta < 0 {
		a.list.MoveUp(-delta)
	} else {
		a.list.MoveDown(delta)
	}
	if a.list.Cursor() != before {
		a.detailScroll = 0
	}
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		if a.focusDetail {
			a.focusDetail = false
			return a, nil
		}
		return a, tea.Quit
	case "esc":
		a.focusDetail = false
		return a, nil
	case "enter":
		if len(a.visible) > 0 {
			a.focusDetail = true
		}
		return a, nil
	case "tab":
		a.setSource((a.activeSrc + 1) % len(sourceTabs))
		return a, nil
	case "shift+tab":
		a.setSource((a.activeSrc - 1 + len(sourceTabs)) % len(sourceTabs))
		return a, nil
	}
	if len(msg.Runes) == 1 {
		if idx := components.TabByKey(sourceTabs, msg.Runes[0]); idx >= 0 {
			a.setSource(idx)
			return a, nil
		}
	}

	if a.focusDetail {
		switch key {
		case "j", "down":
			a.detailScroll++
		case "k", "up":
			a.detailScroll = max(a.detailScroll-1, 0)
		case "g", "home":
			a.detailScroll = 0
		case "ctrl+d", "pgdown":
			a.detailScroll += a.halfPage()
		case "ctrl+u", "pgup":
			a.detailScroll = max(a.detailScroll-a.halfPage(), 0)
		}
		return a, nil
	}

	// J/K scroll the detail pane without leaving the list
	switch key {
	case "J":
		a.detailScroll++
		return a, nil
	case "K":
		a.detailScroll = max(a.detailScroll-1, 0)
		return a, nil
	}

	before := a.list.Cursor()
	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	if a.list.Cursor() != before {
		a.detailScroll = 0
	}
	return a, cmd
}

// loadDataCmd runs the extraction in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts pipeline.Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			// Non-blocking: a dropped update is superseded by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			res := pipeline.Load(opts, progressFn)
			sendFinal(sub, DataLoadedMsg{Result: res, LoadTime: time.Since(start)})
		}()
		return <-sub
	}
}

// sendFinal delivers msg without blocking on a full channel. The loader is
// the only sender, so evicting an unread progress update always frees a
// slot, and the goroutine exits even if nobody reads again.
func sendFinal(sub chan tea.Msg, msg tea.Msg) {
	for {
		select {
		case sub <- msg:
			return
		default:
		}
		select {
		case <-sub:
		default:
		}
	}
}

// waitForLoadMsg blocks until the loader goroutine sends its next message.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  tokenchar needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logo.Render("◈ tokenchar"))
	b.WriteString(muted.Render(" · token usage browser"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	if a.progressMax > 0 {
		b.WriteString(muted.Render(fmt.Sprintf(" Reading sources (%d of %d)", a.progress, a.progressMax)))
	} else {
		b.WriteString(muted.Render(" Discovering sessions..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	bindings := []struct{ key, desc string }{
		{"0 1 2 3", "All / Cowork / Claude Code / Codex"},
		{"tab", "Next source"},
		{"j k", "Move in the list"},
		{"g G", "First / last session"},
		{"J K", "Scroll the detail pane"},
		{"enter", "Focus the detail pane"},
		{"esc", "Back to the list"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		fmt.Fprintf(&b, "%s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", bind.key)), desc.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, h := a.width, a.height
	cw := a.contentWidth()
	contentH := a.contentHeight()

	header := components.RenderTabBar(sourceTabs, a.activeSrc, w) + "\n" + a.renderFilterLine(w)

	var content string
	if len(a.visible) == 0 {
		content = components.ContentCard("Sessions",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No sessions found"), cw, false)
	} else {
		content = a.renderStats(cw) + "\n" + a.renderPanes(cw, contentH)
	}
	content = padHeight(truncateHeight(content, contentH+statsHeight), contentH+statsHeight)
	content = lipgloss.Place(w, contentH+statsHeight, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	info := fmt.Sprintf("%s of %s sessions · loaded in %.1fs",
		cli.FormatNumber(int64(len(a.visible))), cli.FormatNumber(int64(len(a.sessions))), a.loadTime.Seconds())
	hints := "[?]help  [tab]source  [enter]detail  [q]uit"
	status := components.RenderStatusBar(w, hints, info)

	out := lipgloss.JoinVertical(lipgloss.Left, header, content, status)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, out,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderFilterLine(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)

	var parts []string
	if a.project != "" {
		parts = append(parts, dim.Render("project ")+accent.Render(a.project))
	}
	if a.modelFilter != "" {
		parts = append(parts, dim.Render("model ")+accent.Render(a.modelFilter))
	}
	if a.parseErrors > 0 {
		parts = append(parts, warn.Render(fmt.Sprintf("%d malformed lines skipped", a.parseErrors)))
	}
	line := dim.Render(" ") + strings.Join(parts, dim.Render(" │ "))
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(line)
}

// renderStats shows the totals of the visible sessions.
func (a App) renderStats(cw int) string {
	turns := lo.SumBy(a.visible, func(s model.Session) int { return s.TurnsAssistant })
	tokens := lo.SumBy(a.visible, func(s model.Session) int64 { return s.TotalTokens })
	cacheRead := lo.SumBy(a.visible, func(s model.Session) int64 { return s.TotalCacheReadTokens })
	input := lo.SumBy(a.visible, func(s model.Session) int64 { return s.TotalInputTokens })

	hit := "-"
	if cacheRead+input > 0 {
		hit = cli.FormatPercent(float64(cacheRead) / float64(cacheRead+input) * 100)
	}
	return components.StatRow([]components.Stat{
		{Label: "Sessions", Value: cli.FormatNumber(int64(len(a.visible)))},
		{Label: "Turns", Value: cli.FormatNumber(int64(turns))},
		{Label: "Tokens", Value: cli.FormatTokens(tokens)},
		{Label: "Cache hit", Value: hit},
	}, cw)
}

func (a App) renderPanes(cw, h int) string {
	sel, ok := a.selected()
	if a.isCompactLayout() {
		if a.focusDetail && ok {
			return a.renderDetail(sel, cw, h)
		}
		return a.renderList(cw)
	}

	listW := a.listWidth()
	left := a.renderList(listW)
	if !ok {
		return left
	}
	return components.CardRow([]string{left, a.renderDetail(sel, cw-listW, h)})
}

func (a App) renderList(w int) string {
	title := "Sessions"
	if a.activeSrc > 0 {
		title = model.Sources[a.activeSrc-1].Label()
	}
	return components.ContentCard(title, a.list.View(), w, !a.focusDetail)
}

func (a App) renderDetail(s model.Session, w, h int) string {
	lines := strings.Split(a.detailBody(s, components.CardInnerWidth(w)), "\n")
	scroll := min(a.detailScroll, max(len(lines)-1, 0))
	body := truncateHeight(strings.Join(lines[scroll:], "\n"), max(h-3, 1))
	return components.ContentCard("Session "+shortID(s.SessionID), body, w, a.focusDetail)
}

// detailBody renders everything known about s and its turns.
func (a App) detailBody(s model.Session, innerW int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(value.Bold(true).Render(cli.Ellipsize(s.Title, innerW)))
	b.WriteString("\n")
	b.WriteString(label.Render(cli.Ellipsize(fmt.Sprintf("%s · %s", s.Project, s.Model), innerW)))
	b.WriteString("\n")
	b.WriteString(dim.Render(strings.Repeat("─", innerW)))
	b.WriteString("\n")

	created := "-"
	if !s.CreatedAt.IsZero() {
		created = s.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")
	}
	fmt.Fprintf(&b, "%s %s   %s %s\n",
		label.Render("Created"), value.Render(created),
		label.Render("Duration"), value.Render(cli.FormatMinutes(s.DurationMin)))
	turnsLine := fmt.Sprintf("%d user / %d assistant", s.TurnsUser, s.TurnsAssistant)
	if s.SubagentTurns > 0 {
		turnsLine += fmt.Sprintf(" (%d subagent)", s.SubagentTurns)
	}
	fmt.Fprintf(&b, "%s %s\n\n", label.Render("Turns"), value.Render(turnsLine))

	b.WriteString(head.Render("TOKENS"))
	b.WriteString("\n")
	row := func(name string, n int64) {
		fmt.Fprintf(&b, "%s %s\n", label.Render(fmt.Sprintf("%-14s", name)),
			value.Render(fmt.Sprintf("%12s", cli.FormatNumber(n))))
	}
	row("Input", s.TotalInputTokens)
	row("Output", s.TotalOutputTokens)
	if s.TotalReasoningOutputTokens > 0 {
		row("  reasoning", s.TotalReasoningOutputTokens)
	}
	row("Cache read", s.TotalCacheReadTokens)
	if s.Source == model.SourceCodex {
		fmt.Fprintf(&b, "%s %s\n", label.Render(fmt.Sprintf("%-14s", "Cache create")),
			dim.Render(fmt.Sprintf("%12s", "not reported")))
	} else {
		row("Cache create", s.TotalCacheCreateTokens)
	}
	row("Total", s.TotalTokens)
	b.WriteString("\n")

	segs := []components.Segment{
		{Label: "cache read", Value: s.TotalCacheReadTokens, Color: t.CacheRead},
		{Label: "cache create", Value: s.TotalCacheCreateTokens, Color: t.CacheCreate},
		{Label: "input", Value: s.TotalInputTokens, Color: t.Input},
		{Label: "output", Value: s.TotalOutputTokens, Color: t.Output},
	}
	b.WriteString(components.StackedBar(segs, innerW))
	b.WriteString("\n")
	b.WriteString(components.Legend(segs))
	b.WriteString("\n\n")

	turns := pipeline.TurnsOfSession(a.turns, s)
	if len(turns) == 0 {
		b.WriteString(dim.Render("No turns recorded"))
		return b.String()
	}

	totals := lo.Map(turns, func(tr model.Turn, _ int) int64 { return tr.TotalTokens })
	b.WriteString(head.Render("PER TURN"))
	b.WriteString("\n")
	b.WriteString(components.Sparkline(totals, innerW, t.Accent))
	b.WriteString("\n\n")

	b.WriteString(head.Render(fmt.Sprintf("%4s %-8s %-7s %7s %7s %7s %7s", "#", "Time", "Model", "Input", "Output", "Cache", "Total")))
	b.WriteString("\n")
	for _, tr := range turns {
		ts := "-"
		if !tr.Timestamp.IsZero() {
			ts = tr.Timestamp.UTC().Format("15:04:05")
		}
		mark := ""
		if tr.IsSubagent {
			mark = " sub"
		}
		line := fmt.Sprintf("%4d %-8s %-7s %7s %7s %7s %7s%s",
			tr.TurnNumber, ts, cli.Truncate(cli.ShortModel(tr.Model), 7),
			cli.FormatTokens(tr.InputTokens), cli.FormatTokens(tr.OutputTokens),
			cli.FormatTokens(tr.CacheReadTokens+tr.CacheCreateTokens), cli.FormatTokens(tr.TotalTokens), mark)
		b.WriteString(value.Render(cli.Truncate(line, innerW)))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
