package journal

import "time"

type Kind string

const (
	KindRegister  Kind = "register"
	KindCount     Kind = "count"
	KindOverwrite Kind = "overwrite"
	KindDelete    Kind = "delete"
)

// Event records one store mutation caused by a chat message.
// Amount is the delta for counts and the new value for overwrites; Total is the stored count afterwards.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	PatternID int64     `json:"pattern_id"`
	Pattern   string    `json:"pattern"`
	Amount    int64     `json:"amount,omitempty"`
	Total     int64     `json:"total,omitempty"`
	Milestone bool      `json:"milestone,omitempty"`
}

// Recorder abstracts persistence of journal events.
// Load returns events in the order they were appended.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Append(event Event) error
	Load() ([]Event, error)
}
