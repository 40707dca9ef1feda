package source

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/tokenchar/internal/model"
)

const subagentPrefix = "agent-"

// ExtractClaudeCode reads Claude Code transcripts under dir, which holds
// one encoded directory per project. Each <project>/<session>.jsonl is a
// session; subagent transcripts live in <project>/<session>/subagents/.
// Sessions with no assistant usage at all are dropped.
func ExtractClaudeCode(dir string, opts Options) Result {
	var (
		res     Result
		machine = opts.machine()
		log     = opts.logger().With("source", model.SourceClaudeCode)
	)

	for _, projDir := range globDirs(dir, "*") {
		raw := filepath.Base(projDir)
		project, ok := opts.ProjectMap[raw]
		if !ok {
			project = DecodeProjectDir(raw)
		}

		for _, path := range globFiles(projDir, "*.jsonl") {
			id := fileStem(path)
			base := turnBase{source: model.SourceClaudeCode, machine: machine, project: project, sessionID: id}

			p := &transcriptParser{base: base}
			if err := p.parseMain(path); err != nil {
				log.Debug("skipping unreadable transcript", "path", path, "err", err)
				res.FileErrors++
				res.ParseErrors += p.parseErrors
				continue
			}
			for _, saPath := range globFiles(filepath.Join(projDir, id, "subagents"), "*.jsonl") {
				agent := strings.TrimPrefix(fileStem(saPath), subagentPrefix)
				if err := p.parseSubagent(saPath, agent); err != nil {
					log.Debug("unreadable subagent transcript", "path", saPath, "err", err)
					res.FileErrors++
				}
			}
			res.ParseErrors += p.parseErrors

			if len(p.turns) == 0 {
				continue
			}
			res.Turns = append(res.Turns, p.turns...)
			res.Sessions = append(res.Sessions, p.session())
		}
	}
	return res
}

// transcriptParser accumulates one session across its main and subagent
// transcripts. Turn numbers run on across files.
type transcriptParser struct {
	base turnBase

	turns       []model.Turn
	turnsUser   int
	firstText   string
	mainModel   string
	subModel    string
	minTime     time.Time
	maxTime     time.Time
	parseErrors int
}

func (p *transcriptParser) parseMain(path string) error {
	oversized, err := scanLines(path, func(line []byte) {
		rec, ok := p.decode(line)
		if !ok {
			return
		}
		switch rec.Type {
		case "user":
			content := rec.content()
			if !IsGenuineUserTurn(content) {
				return
			}
			p.turnsUser++
			if p.firstText == "" {
				p.firstText = UserText(content)
			}
		case "assistant":
			if t, ok := p.assistantTurn(rec, nil); ok && p.mainModel == "" && isRealModel(t.Model) {
				p.mainModel = t.Model
			}
		}
	})
	p.parseErrors += oversized
	return err
}

// parseSubagent reads a subagent transcript. Only its assistant usage
// counts; its user records are prompts written by the parent agent.
func (p *transcriptParser) parseSubagent(path, agentID string) error {
	oversized, err := scanLines(path, func(line []byte) {
		rec, ok := p.decode(line)
		if !ok || rec.Type != "assistant" {
			return
		}
		if t, ok := p.assistantTurn(rec, subagentID(agentID)); ok && p.subModel == "" && isRealModel(t.Model) {
			p.subModel = t.Model
		}
	})
	p.parseErrors += oversized
	return err
}

// decode parses a transcript line, dropping bookkeeping records before the
// full decode. Every kept record widens the session's time range.
func (p *transcriptParser) decode(line []byte) (RawRecord, bool) {
	switch extractTopLevelType(line) {
	case "file-history-snapshot", "system":
		return RawRecord{}, false
	}
	var rec RawRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		p.parseErrors++
		return RawRecord{}, false
	}
	switch rec.Type {
	case "file-history-snapshot", "system":
		return RawRecord{}, false
	}
	if ts, ok := ParseTimestamp(rec.Timestamp); ok {
		updateTimeRange(&p.minTime, &p.maxTime, ts.Time)
	}
	return rec, true
}

// assistantTurn appends a turn for an assistant record that carries usage.
func (p *transcriptParser) assistantTurn(rec RawRecord, agent *string) (model.Turn, bool) {
	u, present, err := decodeUsage(rec.usage())
	if err != nil {
		p.parseErrors++
		return model.Turn{}, false
	}
	if !present {
		return model.Turn{}, false
	}
	ts, _ := ParseTimestamp(rec.Timestamp)
	t := p.base.newTurn(len(p.turns)+1, ts, rec.model(), u)
	if agent != nil {
		t.IsSubagent = true
		t.SubagentID = agent
	}
	p.turns = append(p.turns, t)
	return t, true
}

func (p *transcriptParser) session() model.Session {
	s := p.base.newSession()
	s.Title = Title(p.firstText)
	s.Model = p.mainModel
	if s.Model == "" {
		s.Model = p.subModel
	}
	s.CreatedAt = model.NewTime(p.minTime)
	s.DurationMin = durationMinutes(p.minTime, p.maxTime)
	s.TurnsUser = p.turnsUser
	for _, t := range p.turns {
		s.AddTurn(t)
	}
	return s
}

func isRealModel(name string) bool {
	return name != "" && name != model.SyntheticModel
}
