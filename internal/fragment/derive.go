package fragment

import "strings"

// attendanceMarkers are the substrings that mark a fragment as evidence of
// a clock-in. Matching is case-insensitive. The confirm route on the
// service side stores the triggering text verbatim, so a confirmed clock-in
// always leaves at least one matching fragment behind.
var attendanceMarkers = []string{
	"clock in",
	"clock-in",
	"clocked in",
	"punch in",
	"punched in",
	"attendance",
}

// ClockedIn reports whether any fragment in the list carries an attendance
// marker. It is recomputed from scratch on every store update; an empty
// list is always clocked-out.
func ClockedIn(list []Fragment) bool {
	for _, f := range list {
		if HasAttendanceMarker(f.Content) {
			return true
		}
	}
	return false
}

// HasAttendanceMarker reports whether the text contains any attendance
// marker substring.
func HasAttendanceMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range attendanceMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// LatestSummary returns the content of the last fragment typed as a
// summary, scanning from the end of the list. ok is false when the list
// holds no summary fragment.
func LatestSummary(list []Fragment) (content string, ok bool) {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Type == TypeSummary {
			return list[i].Content, true
		}
	}
	return "", false
}
