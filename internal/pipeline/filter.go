package pipeline

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/theirongolddev/tokenchar/internal/model"
)

type sessionKey struct {
	source    model.Source
	machine   string
	sessionID string
}

func keyOfSession(s model.Session) sessionKey {
	return sessionKey{s.Source, s.Machine, s.SessionID}
}

func keyOfTurn(t model.Turn) sessionKey {
	return sessionKey{t.Source, t.Machine, t.SessionID}
}

// FilterByProject keeps sessions whose project contains the substring,
// case-insensitively, together with their turns.
func FilterByProject(turns []model.Turn, sessions []model.Session, project string) ([]model.Turn, []model.Session) {
	if project == "" {
		return turns, sessions
	}
	kept := lo.Filter(sessions, func(s model.Session, _ int) bool {
		return containsIgnoreCase(s.Project, project)
	})
	return turnsOf(turns, kept), kept
}

// FilterByModel keeps sessions whose model, or the model of any of their
// turns, contains the substring, together with all of their turns.
func FilterByModel(turns []model.Turn, sessions []model.Session, modelFilter string) ([]model.Turn, []model.Session) {
	if modelFilter == "" {
		return turns, sessions
	}
	matched := make(map[sessionKey]bool)
	for _, t := range turns {
		if containsIgnoreCase(t.Model, modelFilter) {
			matched[keyOfTurn(t)] = true
		}
	}
	kept := lo.Filter(sessions, func(s model.Session, _ int) bool {
		return matched[keyOfSession(s)] || containsIgnoreCase(s.Model, modelFilter)
	})
	return turnsOf(turns, kept), kept
}

// FilterBySource keeps the records of one source.
func FilterBySource(turns []model.Turn, sessions []model.Session, src model.Source) ([]model.Turn, []model.Session) {
	return lo.Filter(turns, func(t model.Turn, _ int) bool { return t.Source == src }),
		lo.Filter(sessions, func(s model.Session, _ int) bool { return s.Source == src })
}

// TurnsOfSession returns the turns of s in turn-number order.
func TurnsOfSession(turns []model.Turn, s model.Session) []model.Turn {
	key := keyOfSession(s)
	out := lo.Filter(turns, func(t model.Turn, _ int) bool { return keyOfTurn(t) == key })
	sort.SliceStable(out, func(i, j int) bool { return out[i].TurnNumber < out[j].TurnNumber })
	return out
}

// Newest returns a copy of sessions sorted by creation time, newest first.
// Sessions without a creation time go last.
func Newest(sessions []model.Session) []model.Session {
	out := append([]model.Session(nil), sessions...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.After(b.Time)
	})
	return out
}

func turnsOf(turns []model.Turn, sessions []model.Session) []model.Turn {
	keys := lo.SliceToMap(sessions, func(s model.Session) (sessionKey, struct{}) {
		return keyOfSession(s), struct{}{}
	})
	return lo.Filter(turns, func(t model.Turn, _ int) bool {
		_, ok := keys[keyOfTurn(t)]
		return ok
	})
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
