package source

import (
	"bytes"
	"encoding/json"

	"github.com/theirongolddev/tokenchar/internal/model"
)

// Usage is a token count already decomposed into the common schema.
type Usage struct {
	Input       int64
	Output      int64
	CacheRead   int64
	CacheCreate int64
	Reasoning   int64
}

// Total is the sum of the four additive components.
func (u Usage) Total() int64 {
	return u.Input + u.Output + u.CacheRead + u.CacheCreate
}

// decodeUsage reads an Anthropic usage block. Missing fields default to 0.
// present is false when the block is absent, null or empty, which marks an
// assistant record that did not complete a model call.
func decodeUsage(raw json.RawMessage) (u Usage, present bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Usage{}, false, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Usage{}, false, err
	}
	if len(fields) == 0 {
		return Usage{}, false, nil
	}
	var ru RawUsage
	if err := json.Unmarshal(raw, &ru); err != nil {
		return Usage{}, false, err
	}
	return Usage{
		Input:       max(ru.InputTokens, 0),
		Output:      max(ru.OutputTokens, 0),
		CacheRead:   max(ru.CacheReadInputTokens, 0),
		CacheCreate: max(ru.CacheCreationInputTokens, 0),
	}, true, nil
}

// vendorTotals are OpenAI-style counters: input includes cached input and
// output includes reasoning.
type vendorTotals struct {
	Input       int64 `json:"input_tokens"`
	CachedInput int64 `json:"cached_input_tokens"`
	Output      int64 `json:"output_tokens"`
	Reasoning   int64 `json:"reasoning_output_tokens"`
}

func (v vendorTotals) isZero() bool {
	return v == vendorTotals{}
}

// sub returns the per-component delta v-prev, clamping each component at 0.
func (v vendorTotals) sub(prev vendorTotals) vendorTotals {
	return vendorTotals{
		Input:       max(v.Input-prev.Input, 0),
		CachedInput: max(v.CachedInput-prev.CachedInput, 0),
		Output:      max(v.Output-prev.Output, 0),
		Reasoning:   max(v.Reasoning-prev.Reasoning, 0),
	}
}

// decompose maps vendor counters onto the common schema. Cached input is
// split out of input, reasoning stays a subset of output, and the vendor
// never reports cache creation.
func (v vendorTotals) decompose() Usage {
	output := max(v.Output, 0)
	return Usage{
		Input:     max(v.Input-v.CachedInput, 0),
		CacheRead: max(v.CachedInput, 0),
		Output:    output,
		Reasoning: min(max(v.Reasoning, 0), output),
	}
}

// turnBase holds the identity fields shared by every turn of a session.
type turnBase struct {
	source    model.Source
	machine   string
	project   string
	sessionID string
}

// newTurn builds a turn from a decomposed usage. Total is always derived
// from the components.
func (b turnBase) newTurn(n int, ts model.Time, modelName string, u Usage) model.Turn {
	t := model.Turn{
		Source:                b.source,
		Machine:               b.machine,
		Project:               b.project,
		SessionID:             b.sessionID,
		TurnNumber:            n,
		Timestamp:             ts,
		Model:                 modelName,
		Family:                ModelFamily(modelName),
		InputTokens:           u.Input,
		OutputTokens:          u.Output,
		CacheReadTokens:       u.CacheRead,
		CacheCreateTokens:     u.CacheCreate,
		ReasoningOutputTokens: min(u.Reasoning, u.Output),
	}
	t.SumTokens()
	return t
}

// newSession builds an empty session record for the same identity.
func (b turnBase) newSession() model.Session {
	return model.Session{
		Source:    b.source,
		Machine:   b.machine,
		Project:   b.project,
		SessionID: b.sessionID,
	}
}

func subagentID(id string) *string {
	return &id
}
