package domain

import "time"

// Scheduled email statuses. An email leaves 'scheduled' exactly once; a
// failed send transitions to 'failed' rather than staying due, so the
// transport is not flooded on every sweep.
const (
	EmailStatusScheduled = "scheduled"
	EmailStatusSent      = "sent"
	EmailStatusFailed    = "failed"
)

// ScheduledEmail is one individually scheduled message awaiting dispatch by
// the sweep.
type ScheduledEmail struct {
	ID           string     `json:"id"`
	To           string     `json:"to"`
	Subject      string     `json:"subject"`
	Template     string     `json:"template"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
