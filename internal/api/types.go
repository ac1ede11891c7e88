// Package api holds the wire types for the work-log service, the chi HTTP
// handler serving them, the HTTP client consumed by the CLI and TUI, and
// the MCP server exposing the same operations to agents.
package api

import "punchlog/internal/fragment"

// Actions returned in InputResponse.Action.
const (
	ActionRecord  = "record"
	ActionQuery   = "query"
	ActionConfirm = "confirm"
	ActionReject  = "reject"
)

// InputRequest is the body of POST /api/input.
type InputRequest struct {
	Text string `json:"text"`
	// Author is a literal author name or the "all" sentinel.
	Author string `json:"author"`
	// Date is optional YYYY-MM-DD; the server defaults it to today.
	Date string `json:"date,omitempty"`
}

// InputResponse is the unified reply for every submission or query.
// When Ok is false, Error is set and TodayFragments must be ignored.
type InputResponse struct {
	Ok             bool                `json:"ok"`
	Action         string              `json:"action,omitempty"`
	ToolCalled     string              `json:"tool_called,omitempty"`
	TodayFragments []fragment.Fragment `json:"today_fragments"`
	InputText      string              `json:"input_text,omitempty"`
	Error          string              `json:"error,omitempty"`
}

// DeleteResponse is the reply for DELETE /api/fragments/{id}. On success
// TodayFragments is the authoritative post-delete list for the caller's
// scope; an empty list really means empty.
type DeleteResponse struct {
	Ok             bool                `json:"ok"`
	DeletedID      string              `json:"deleted_id,omitempty"`
	TodayFragments []fragment.Fragment `json:"today_fragments"`
	Error          string              `json:"error,omitempty"`
}
