// Package fragment defines the work-log fragment model and the pure
// projections derived from a day's fragment list.
package fragment

// Fragment type tags as stored and returned by the service.
const (
	TypeNote    = "note"
	TypeSummary = "summary"
)

// AuthorAll is the scope sentinel meaning "all authors".
const AuthorAll = "all"

// Fragment is one stored unit of reported activity, as returned by the
// service. Fields mirror the wire format; the core never mutates a
// fragment after receiving it.
type Fragment struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Content      string   `json:"content"`
	OccurredDate string   `json:"occurred_date"`
	Source       string   `json:"source"`
	Author       string   `json:"author,omitempty"`
	Tags         []string `json:"tags"`
	CreatedAt    string   `json:"created_at"`
}
