// Package output writes extracted turns and sessions as JSON, JSONL or CSV.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/tokenchar/internal/model"
	"github.com/theirongolddev/tokenchar/internal/schema"
)

// Envelope is the whole-document JSON form of one extraction.
type Envelope struct {
	Version     string          `json:"tokenchar_version"`
	ExtractedAt model.Time      `json:"extracted_at"`
	Machine     string          `json:"machine"`
	Sources     []model.Source  `json:"sources"`
	Turns       []model.Turn    `json:"turns"`
	Sessions    []model.Session `json:"sessions"`
}

// NewEnvelope stamps the records with the current time. Nil slices become
// empty arrays so consumers always see lists.
func NewEnvelope(version, machine string, sources []model.Source, turns []model.Turn, sessions []model.Session) Envelope {
	if sources == nil {
		sources = []model.Source{}
	}
	if turns == nil {
		turns = []model.Turn{}
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return Envelope{
		Version:     version,
		ExtractedAt: model.NewTime(time.Now()),
		Machine:     machine,
		Sources:     sources,
		Turns:       turns,
		Sessions:    sessions,
	}
}

// WriteJSON writes env indented by two spaces with a trailing newline.
func WriteJSON(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

type turnRecord struct {
	model.Turn
	RecordType string `json:"_record_type"`
}

type sessionRecord struct {
	model.Session
	RecordType string `json:"_record_type"`
}

// WriteJSONL writes one object per line, turns first, each tagged with
// "_record_type".
func WriteJSONL(w io.Writer, turns []model.Turn, sessions []model.Session) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, t := range turns {
		if err := enc.Encode(turnRecord{Turn: t, RecordType: "turn"}); err != nil {
			return fmt.Errorf("encoding turn %s#%d: %w", t.SessionID, t.TurnNumber, err)
		}
	}
	for _, s := range sessions {
		if err := enc.Encode(sessionRecord{Session: s, RecordType: "session"}); err != nil {
			return fmt.Errorf("encoding session %s: %w", s.SessionID, err)
		}
	}
	return nil
}

// CSVPaths returns the turn and session file names for dest. An existing
// directory gets turns.csv and sessions.csv inside it; anything else is
// treated as a file prefix.
func CSVPaths(dest string) (turnsPath, sessionsPath string) {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return filepath.Join(dest, "turns.csv"), filepath.Join(dest, "sessions.csv")
	}
	return dest + "_turns.csv", dest + "_sessions.csv"
}

// WriteCSV writes the two tables for dest and returns the paths written.
func WriteCSV(dest string, turns []model.Turn, sessions []model.Session) ([]string, error) {
	turnsPath, sessionsPath := CSVPaths(dest)
	if err := os.MkdirAll(filepath.Dir(turnsPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	turnRows := make([][]string, len(turns))
	for i, t := range turns {
		turnRows[i] = schema.TurnRow(t)
	}
	if err := writeCSVFile(turnsPath, schema.TurnFields, turnRows); err != nil {
		return nil, err
	}

	sessionRows := make([][]string, len(sessions))
	for i, s := range sessions {
		sessionRows[i] = schema.SessionRow(s)
	}
	if err := writeCSVFile(sessionsPath, schema.SessionFields, sessionRows); err != nil {
		return []string{turnsPath}, err
	}
	return []string{turnsPath, sessionsPath}, nil
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Create opens dest for writing, creating parent directories. An empty
// dest writes to stdout; the returned close func is then a no-op.
func Create(dest string) (io.Writer, func() error, error) {
	if dest == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", dest, err)
	}
	return f, f.Close, nil
}
