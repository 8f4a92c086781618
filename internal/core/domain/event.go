package domain

import "time"

type EventType string

const (
	EventOpen  EventType = "opened"
	EventClick EventType = "clicked"
)

// TrackingEvent is one recipient interaction with a tracked email. The
// tracking endpoints publish events and return immediately; the queue
// consumer applies them to the store afterwards.
type TrackingEvent struct {
	Type       EventType `json:"type"`
	DeliveryID string    `json:"delivery_id"`
	LinkURL    string    `json:"link_url,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
