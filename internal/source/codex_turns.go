package source

import "github.com/theirongolddev/tokenchar/internal/model"

// codexTurn is a reconstructed turn before identity fields are attached.
type codexTurn struct {
	At    model.Time
	Model string
	Usage Usage
}

// codexTurns picks the first turn-boundary protocol that yields turns:
// explicit task markers, then counter deltas, then a single whole-session
// turn. Only one protocol ever contributes to a session.
func codexTurns(events []codexEvent, sessionStart model.Time, primaryModel string) []codexTurn {
	if turns := taskTurns(events); len(turns) > 0 {
		return turns
	}
	if turns := counterTurns(events); len(turns) > 0 {
		return turns
	}
	return wholeSessionTurn(events, sessionStart, primaryModel)
}

// taskTurns brackets turns with task_started/task_complete markers. At
// each start it snapshots the latest cumulative totals (zero if none yet);
// at the matching complete the turn is latest minus that snapshot. A
// complete with no open task, or before any counter update, emits nothing.
// The turn is stamped with its start time and the model in effect.
func taskTurns(events []codexEvent) []codexTurn {
	var (
		turns        []codexTurn
		latest       vendorTotals
		haveLatest   bool
		inside       bool
		snapshot     vendorTotals
		startAt      model.Time
		currentModel string
	)
	for _, ev := range events {
		switch ev.Kind {
		case evTurnContext:
			currentModel = ev.Model
		case evTokenCount:
			latest, haveLatest = ev.Totals, true
		case evTaskStarted:
			inside = true
			snapshot = vendorTotals{}
			if haveLatest {
				snapshot = latest
			}
			startAt = ev.At
		case evTaskComplete:
			if inside && haveLatest {
				turns = append(turns, codexTurn{
					At:    startAt,
					Model: currentModel,
					Usage: latest.sub(snapshot).decompose(),
				})
			}
			inside = false
		}
	}
	return turns
}

// counterTurns treats every token_count event as a checkpoint and emits a
// turn for each checkpoint whose totals moved since the previous one. The
// first checkpoint is measured from zero. Unchanged checkpoints are
// heartbeats and emit nothing. It needs at least two checkpoints; a lone
// checkpoint carries no boundary information.
func counterTurns(events []codexEvent) []codexTurn {
	checkpoints := 0
	for _, ev := range events {
		if ev.Kind == evTokenCount {
			checkpoints++
		}
	}
	if checkpoints < 2 {
		return nil
	}

	var (
		turns        []codexTurn
		prev         vendorTotals
		currentModel string
	)
	for _, ev := range events {
		switch ev.Kind {
		case evTurnContext:
			currentModel = ev.Model
		case evTokenCount:
			if ev.Totals == prev {
				continue
			}
			delta := ev.Totals.sub(prev)
			prev = ev.Totals
			if delta.isZero() {
				continue
			}
			turns = append(turns, codexTurn{
				At:    ev.At,
				Model: currentModel,
				Usage: delta.decompose(),
			})
		}
	}
	return turns
}

// wholeSessionTurn emits one turn equal to the final cumulative totals,
// or nothing when those totals are zero or absent.
func wholeSessionTurn(events []codexEvent, sessionStart model.Time, primaryModel string) []codexTurn {
	var final vendorTotals
	for _, ev := range events {
		if ev.Kind == evTokenCount {
			final = ev.Totals
		}
	}
	if final.isZero() {
		return nil
	}
	return []codexTurn{{
		At:    sessionStart,
		Model: primaryModel,
		Usage: final.decompose(),
	}}
}
