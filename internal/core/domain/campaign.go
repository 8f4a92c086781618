package domain

import "time"

// Campaign statuses. Moving a campaign from 'scheduled' to 'processing' is
// the claim that keeps an overlapping sweep from dispatching the same
// campaign twice; 'sent' and 'failed' are terminal.
const (
	CampaignStatusScheduled  = "scheduled"
	CampaignStatusProcessing = "processing"
	CampaignStatusSent       = "sent"
	CampaignStatusFailed     = "failed"
)

// Campaign is one bulk send: a recipient set, a template and a schedule
// time. Recipients live in their own table keyed by campaign id.
type Campaign struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Subject      string     `json:"subject"`
	Template     string     `json:"template"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
