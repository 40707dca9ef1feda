package source

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/theirongolddev/tokenchar/internal/model"
)

// Options configures a single source extraction.
type Options struct {
	// Machine labels every record. Defaults to the host name.
	Machine string

	// ProjectName overrides the derived project name (cowork only).
	ProjectName string

	// SkipFirstN drops the N oldest sessions of each project, but only
	// when the project holds more than N sessions (cowork only).
	SkipFirstN int

	// ProjectMap maps raw project directory names to display names
	// (claude_code only).
	ProjectMap map[string]string

	Logger *slog.Logger
}

func (o Options) machine() string {
	if o.Machine != "" {
		return o.Machine
	}
	return Hostname()
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Result holds everything one source extraction produced.
type Result struct {
	Turns    []model.Turn
	Sessions []model.Session

	// ParseErrors counts malformed lines that were skipped.
	ParseErrors int
	// FileErrors counts files that could not be read (fully or in part).
	FileErrors int
}

func (r *Result) merge(o Result) {
	r.Turns = append(r.Turns, o.Turns...)
	r.Sessions = append(r.Sessions, o.Sessions...)
	r.ParseErrors += o.ParseErrors
	r.FileErrors += o.FileErrors
}

// RawRecord is one line of a Claude transcript or Cowork audit log.
type RawRecord struct {
	Type           string      `json:"type"`
	Timestamp      string      `json:"timestamp,omitempty"`
	AuditTimestamp string      `json:"_audit_timestamp,omitempty"`
	SessionID      string      `json:"sessionId,omitempty"`
	Cwd            string      `json:"cwd,omitempty"`
	Message        *RawMessage `json:"message,omitempty"`
}

// RawMessage is the message envelope of a user or assistant record.
type RawMessage struct {
	Role           string          `json:"role,omitempty"`
	Model          string          `json:"model,omitempty"`
	Content        json.RawMessage `json:"content,omitempty"`
	Usage          json.RawMessage `json:"usage,omitempty"`
	AuditTimestamp string          `json:"_audit_timestamp,omitempty"`
}

// content returns the message content. A missing content field reads as
// an empty string, which counts as genuine user input.
func (r *RawRecord) content() json.RawMessage {
	if r.Message == nil || len(r.Message.Content) == 0 {
		return json.RawMessage(`""`)
	}
	return r.Message.Content
}

func (r *RawRecord) model() string {
	if r.Message == nil {
		return ""
	}
	return r.Message.Model
}

func (r *RawRecord) usage() json.RawMessage {
	if r.Message == nil {
		return nil
	}
	return r.Message.Usage
}

// auditTimestamp prefers the top-level audit stamp over the nested one.
func (r *RawRecord) auditTimestamp() string {
	if r.AuditTimestamp != "" {
		return r.AuditTimestamp
	}
	if r.Message != nil {
		return r.Message.AuditTimestamp
	}
	return ""
}

// RawUsage holds the Anthropic usage block of an assistant message.
type RawUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}

// CoworkMeta is the per-session metadata file of the desktop agent.
type CoworkMeta struct {
	SessionID      string `json:"sessionId"`
	Title          string `json:"title"`
	Model          string `json:"model"`
	CreatedAt      int64  `json:"createdAt"`
	LastActivityAt int64  `json:"lastActivityAt"`
}

// CodexRecord is one line of a Codex rollout log.
type CodexRecord struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// CodexSessionMeta is the payload of a session_meta record.
type CodexSessionMeta struct {
	ID         string `json:"id"`
	Cwd        string `json:"cwd"`
	Originator string `json:"originator"`
	CLIVersion string `json:"cli_version"`
}

// CodexTurnContext is the payload of a turn_context record.
type CodexTurnContext struct {
	TurnID string `json:"turn_id"`
	Model  string `json:"model"`
}

// CodexEventMsg is the payload of an event_msg record. Only the fields
// of the sub-events used for accounting are decoded.
type CodexEventMsg struct {
	Type    string          `json:"type"`
	TurnID  string          `json:"turn_id,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	Info    *CodexTokenInfo `json:"info,omitempty"`
}

// CodexTokenInfo carries the cumulative counters of a token_count event.
type CodexTokenInfo struct {
	TotalTokenUsage *vendorTotals `json:"total_token_usage,omitempty"`
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
