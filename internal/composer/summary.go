// Package composer assembles the daily summary text from a day's recorded
// fragments. The digest is deterministic: a header line plus one bullet per
// note, in the order the notes were recorded.
package composer

import (
	"fmt"
	"strings"

	"punchlog/internal/fragment"
	"punchlog/internal/storage"
)

const defaultMaxItems = 50

// Composer builds daily summary digests.
type Composer struct {
	MaxItems int
}

// New creates a Composer. If maxItems <= 0, the default (50) is used.
func New(maxItems int) *Composer {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &Composer{MaxItems: maxItems}
}

// Compose builds the summary content for one author's (or everyone's)
// fragments on a date. Earlier summary fragments are excluded so
// re-summarizing never folds a previous digest into the new one. The
// returned ok is false when there is nothing to summarize.
func (c *Composer) Compose(date, author string, items []storage.FragmentRecord) (content string, ok bool) {
	var notes []storage.FragmentRecord
	for _, f := range items {
		if f.Type == fragment.TypeSummary {
			continue
		}
		notes = append(notes, f)
		if len(notes) == c.MaxItems {
			break
		}
	}
	if len(notes) == 0 {
		return "", false
	}

	var sb strings.Builder
	switch author {
	case "", fragment.AuthorAll:
		fmt.Fprintf(&sb, "Summary for %s (%d entries):\n", date, len(notes))
	default:
		fmt.Fprintf(&sb, "Summary for %s on %s (%d entries):\n", author, date, len(notes))
	}
	for _, f := range notes {
		line := strings.TrimSpace(f.Content)
		if author == "" || author == fragment.AuthorAll {
			fmt.Fprintf(&sb, "- %s: %s\n", f.Author, line)
		} else {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}
	return strings.TrimRight(sb.String(), "\n"), true
}
