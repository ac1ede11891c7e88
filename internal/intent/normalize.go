// Package intent classifies free-text work-log input into one of the
// deterministic service actions and resolves relative date references.
// There is no model call here: routing is keyword-based so behaviour is
// reproducible and testable.
package intent

import (
	"strings"
	"time"
)

// DateFormat is the calendar-date wire format used everywhere.
const DateFormat = "2006-01-02"

// Normalized is the result of input normalization.
type Normalized struct {
	// CleanText is the trimmed input.
	CleanText string
	// ResolvedDate is a YYYY-MM-DD date inferred from a relative
	// reference in the text ("yesterday" etc.), or empty when the text
	// carries no date semantics.
	ResolvedDate string
}

// Normalize trims the input and resolves relative date references against
// the given reference time.
func Normalize(text string, now time.Time) Normalized {
	clean := strings.TrimSpace(text)
	lower := strings.ToLower(clean)

	n := Normalized{CleanText: clean}
	switch {
	case strings.Contains(lower, "day before yesterday"):
		n.ResolvedDate = now.AddDate(0, 0, -2).Format(DateFormat)
	case strings.Contains(lower, "yesterday"):
		n.ResolvedDate = now.AddDate(0, 0, -1).Format(DateFormat)
	case strings.Contains(lower, "today"), strings.Contains(lower, "now"):
		n.ResolvedDate = now.Format(DateFormat)
	}
	return n
}
