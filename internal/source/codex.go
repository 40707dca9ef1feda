package source

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/theirongolddev/tokenchar/internal/model"
)

const codexRolloutPattern = "**/rollout-*.jsonl"

type codexEventKind int

const (
	evTurnContext codexEventKind = iota + 1
	evTaskStarted
	evTaskComplete
	evUserMessage
	evTokenCount
)

// codexEvent is the part of a rollout record that turn reconstruction
// needs. A rollout file reduces to a slice of these.
type codexEvent struct {
	Kind   codexEventKind
	At     model.Time
	Model  string       // evTurnContext
	Totals vendorTotals // evTokenCount, cumulative
}

// codexLog is a decoded rollout file.
type codexLog struct {
	SessionID string
	Cwd       string
	FirstText string
	Events    []codexEvent

	minTime time.Time
	maxTime time.Time
}

// ExtractCodex reads Codex rollout logs anywhere under dir.
func ExtractCodex(dir string, opts Options) Result {
	var (
		res     Result
		machine = opts.machine()
		log     = opts.logger().With("source", model.SourceCodex)
	)

	for _, path := range globFiles(dir, codexRolloutPattern) {
		cl, parseErrors, err := readCodexLog(path)
		res.ParseErrors += parseErrors
		if err != nil {
			log.Debug("skipping unreadable rollout", "path", path, "err", err)
			res.FileErrors++
			continue
		}
		if cl.SessionID == "" {
			cl.SessionID = fileStem(path)
		}

		turns, sess, ok := cl.build(machine)
		if !ok {
			continue
		}
		res.Turns = append(res.Turns, turns...)
		res.Sessions = append(res.Sessions, sess)
	}
	return res
}

// readCodexLog decodes a rollout file into its event list in one pass.
func readCodexLog(path string) (codexLog, int, error) {
	var (
		cl          codexLog
		parseErrors int
	)
	oversized, err := scanLines(path, func(line []byte) {
		var rec CodexRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			parseErrors++
			return
		}
		ts, ok := ParseTimestamp(rec.Timestamp)
		if ok {
			updateTimeRange(&cl.minTime, &cl.maxTime, ts.Time)
		}
		if err := cl.add(rec, ts); err != nil {
			parseErrors++
		}
	})
	return cl, parseErrors + oversized, err
}

func (cl *codexLog) add(rec CodexRecord, ts model.Time) error {
	switch rec.Type {
	case "session_meta":
		var meta CodexSessionMeta
		if err := json.Unmarshal(rec.Payload, &meta); err != nil {
			return err
		}
		cl.SessionID = meta.ID
		cl.Cwd = meta.Cwd

	case "turn_context":
		var tc CodexTurnContext
		if err := json.Unmarshal(rec.Payload, &tc); err != nil {
			return err
		}
		if tc.Model != "" {
			cl.Events = append(cl.Events, codexEvent{Kind: evTurnContext, At: ts, Model: tc.Model})
		}

	case "event_msg":
		var msg CodexEventMsg
		if err := json.Unmarshal(rec.Payload, &msg); err != nil {
			return err
		}
		switch msg.Type {
		case "task_started":
			cl.Events = append(cl.Events, codexEvent{Kind: evTaskStarted, At: ts})
		case "task_complete":
			cl.Events = append(cl.Events, codexEvent{Kind: evTaskComplete, At: ts})
		case "user_message":
			cl.Events = append(cl.Events, codexEvent{Kind: evUserMessage, At: ts})
			if cl.FirstText == "" {
				var text string
				if json.Unmarshal(msg.Message, &text) == nil {
					cl.FirstText = strings.TrimSpace(text)
				}
			}
		case "token_count":
			if msg.Info != nil && msg.Info.TotalTokenUsage != nil {
				cl.Events = append(cl.Events, codexEvent{Kind: evTokenCount, At: ts, Totals: *msg.Info.TotalTokenUsage})
			}
		}
	}
	return nil
}

// build reconstructs turns and the session summary. ok is false when the
// log yields no turns.
func (cl codexLog) build(machine string) ([]model.Turn, model.Session, bool) {
	var models []string
	userMessages := 0
	for _, ev := range cl.Events {
		switch ev.Kind {
		case evTurnContext:
			models = append(models, ev.Model)
		case evUserMessage:
			userMessages++
		}
	}
	primary := PrimaryModel(models)

	raw := codexTurns(cl.Events, model.NewTime(cl.minTime), primary)
	if len(raw) == 0 {
		return nil, model.Session{}, false
	}

	base := turnBase{
		source:    model.SourceCodex,
		machine:   machine,
		project:   projectFromCwd(cl.Cwd),
		sessionID: cl.SessionID,
	}
	sess := base.newSession()
	turns := make([]model.Turn, 0, len(raw))
	for i, rt := range raw {
		t := base.newTurn(i+1, rt.At, rt.Model, rt.Usage)
		turns = append(turns, t)
		sess.AddTurn(t)
	}

	sess.Title = Title(cl.FirstText)
	sess.Model = primary
	sess.CreatedAt = model.NewTime(cl.minTime)
	sess.DurationMin = durationMinutes(cl.minTime, cl.maxTime)
	sess.TurnsUser = max(userMessages, len(turns))
	return turns, sess, true
}
