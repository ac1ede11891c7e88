package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// FragmentRecord is one stored work-log fragment.
type FragmentRecord struct {
	ID           string
	Type         string // "note" or "summary"
	Content      string
	OccurredDate string // YYYY-MM-DD
	Source       string // "user", "mcp", ...
	Author       string
	Tags         string // JSON array stored as text
	CreatedAt    time.Time
}

// ClockEvent is one attendance confirmation or timeout fact for a date.
type ClockEvent struct {
	Date        string // YYYY-MM-DD
	EventType   string // "start_work" or "end_work"
	Status      string // "confirmed" or "timeout"
	ConfirmedAt time.Time
	Channel     string // "manual", "mcp"
	Note        string
}

// Clock event constants.
const (
	EventStartWork = "start_work"
	EventEndWork   = "end_work"

	ClockConfirmed = "confirmed"
	ClockTimeout   = "timeout"
)
