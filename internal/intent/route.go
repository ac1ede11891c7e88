package intent

import (
	"strings"

	"punchlog/internal/fragment"
)

// Action is the routed outcome for one input.
type Action string

const (
	// ActionReject refuses report-generation asks outright; no tool runs.
	ActionReject Action = "reject"
	// ActionConfirm records a clock-in confirmation.
	ActionConfirm Action = "confirm"
	// ActionSummarize composes and stores a daily summary fragment.
	ActionSummarize Action = "summarize"
	// ActionQuery reads back the day's fragments.
	ActionQuery Action = "query"
	// ActionRecord stores the text as a new fact fragment.
	ActionRecord Action = "record"
)

// rejectPhrases are asks to generate formal reports, which the service
// refuses: it stores facts, it does not write prose for you.
var rejectPhrases = []string{
	"daily report",
	"weekly report",
	"write a report",
	"write my report",
}

var summarizePhrases = []string{
	"summarize today",
	"summarize my day",
	"summarise today",
	"summary of today",
	"summary of my day",
}

var queryPhrases = []string{
	"what did i do",
	"what did we do",
	"what happened",
	"what have i done",
	"show me today",
	"show today",
}

// factVerbs gate the record route: a loggable fact states work performed.
var factVerbs = []string{
	"completed", "finished", "fixed", "implemented", "deployed",
	"tested", "wrote", "built", "designed", "reviewed", "merged",
	"debugged", "investigated", "updated", "refactored", "shipped",
	"drafted", "released", "resolved",
}

var questionMarkers = []string{
	"?", "what", "why", "how", "when", "did i", "am i", "have i",
}

// Route classifies the input. Priority order matters: reject wins over
// confirm, confirm over summarize, and so on down to the query fallback
// for anything that does not pass the fact gate.
func Route(text string) Action {
	lower := strings.ToLower(strings.TrimSpace(text))

	if containsAny(lower, rejectPhrases) {
		return ActionReject
	}
	if fragment.HasAttendanceMarker(lower) {
		return ActionConfirm
	}
	if containsAny(lower, summarizePhrases) {
		return ActionSummarize
	}
	if containsAny(lower, queryPhrases) {
		return ActionQuery
	}
	if isRecordable(lower) {
		return ActionRecord
	}
	return ActionQuery
}

// isRecordable applies the fact gate: an explicit work verb, non-trivial
// content, and not phrased as a question.
func isRecordable(lower string) bool {
	if len(lower) <= 3 {
		return false
	}
	if containsAny(lower, questionMarkers) {
		return false
	}
	return containsAny(lower, factVerbs)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
