package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/tokenchar/internal/model"
)

const coworkMetaPattern = "local_*.json"

// ExtractCowork reads Claude Desktop agent sessions under dir. dir is
// either a project directory holding local_*.json metadata files, or a
// root whose <org>/<project> subdirectories are each parsed as a project.
func ExtractCowork(dir string, opts Options) Result {
	if len(globFiles(dir, coworkMetaPattern)) > 0 {
		return coworkProject(dir, opts.ProjectName, opts)
	}

	var res Result
	for _, projDir := range globDirs(dir, "*/*") {
		res.merge(coworkProject(projDir, opts.ProjectName, opts))
	}
	return res
}

type coworkSession struct {
	createdAtMs int64
	turns       []model.Turn
	session     model.Session
}

func coworkProject(dir, project string, opts Options) Result {
	if project == "" {
		project = filepath.Base(dir)
	}
	log := opts.logger().With("source", model.SourceCowork, "project", project)

	var (
		res     Result
		parsed  []coworkSession
		machine = opts.machine()
	)
	for _, metaPath := range globFiles(dir, coworkMetaPattern) {
		meta, err := readCoworkMeta(metaPath)
		if err != nil {
			log.Debug("skipping unreadable metadata", "path", metaPath, "err", err)
			res.FileErrors++
			continue
		}

		id := strings.TrimPrefix(meta.SessionID, "local_")
		if id == "" {
			id = strings.TrimPrefix(fileStem(metaPath), "local_")
		}
		auditPath := filepath.Join(dir, "local_"+id, "audit.jsonl")
		if info, err := os.Stat(auditPath); err != nil || info.IsDir() {
			continue
		}

		base := turnBase{source: model.SourceCowork, machine: machine, project: project, sessionID: id}
		cs, parseErrors, err := parseCoworkAudit(auditPath, base, meta)
		res.ParseErrors += parseErrors
		if err != nil {
			log.Debug("skipping unreadable audit log", "path", auditPath, "err", err)
			res.FileErrors++
			continue
		}
		parsed = append(parsed, cs)
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].createdAtMs < parsed[j].createdAtMs
	})
	if n := opts.SkipFirstN; n > 0 && len(parsed) > n {
		parsed = parsed[n:]
	}

	for _, cs := range parsed {
		res.Turns = append(res.Turns, cs.turns...)
		res.Sessions = append(res.Sessions, cs.session)
	}
	return res
}

func readCoworkMeta(path string) (CoworkMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CoworkMeta{}, err
	}
	var meta CoworkMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return CoworkMeta{}, err
	}
	return meta, nil
}

// parseCoworkAudit streams one audit log. Every assistant record is a
// turn, including synthetic ones; user records count only when genuine.
func parseCoworkAudit(path string, base turnBase, meta CoworkMeta) (coworkSession, int, error) {
	var (
		sess        = base.newSession()
		turns       []model.Turn
		models      []string
		firstText   string
		parseErrors int
	)

	oversized, err := scanLines(path, func(line []byte) {
		var rec RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			parseErrors++
			return
		}

		switch rec.Type {
		case "user":
			content := rec.content()
			if !IsGenuineUserTurn(content) {
				return
			}
			sess.TurnsUser++
			if firstText == "" {
				firstText = UserText(content)
			}

		case "assistant":
			u, _, err := decodeUsage(rec.usage())
			if err != nil {
				parseErrors++
				u = Usage{}
			}
			ts, _ := ParseTimestamp(rec.auditTimestamp())
			t := base.newTurn(len(turns)+1, ts, rec.model(), u)
			turns = append(turns, t)
			models = append(models, t.Model)
			sess.AddTurn(t)
		}
	})
	parseErrors += oversized
	if err != nil {
		return coworkSession{}, parseErrors, err
	}

	sess.Title = meta.Title
	if sess.Title == "" {
		sess.Title = Title(firstText)
	}
	sess.Model = PrimaryModel(models)
	if sess.Model == "" {
		sess.Model = meta.Model
	}
	if meta.CreatedAt > 0 {
		sess.CreatedAt = model.UnixMilli(meta.CreatedAt)
	}
	if meta.CreatedAt > 0 && meta.LastActivityAt > 0 {
		span := time.Duration(meta.LastActivityAt-meta.CreatedAt) * time.Millisecond
		sess.DurationMin = spanMinutes(span)
	}

	return coworkSession{createdAtMs: meta.CreatedAt, turns: turns, session: sess}, parseErrors, nil
}
