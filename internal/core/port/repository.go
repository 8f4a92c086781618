package port

import (
	"context"
	"errors"
	"time"

	"mailtrack/internal/core/domain"
)

var (
	ErrDeliveryNotFound = errors.New("delivery record not found")
	ErrCampaignNotFound = errors.New("campaign not found")
)

// DeliveryRepository persists per-recipient send attempts and their
// open/click lifecycle. It is an outbound port in hexagonal architecture.
// Implementations must increment counter columns server-side, never from a
// value computed by the client.
type DeliveryRepository interface {
	CreateDelivery(ctx context.Context, d *domain.DeliveryRecord) error
	GetDelivery(ctx context.Context, id string) (*domain.DeliveryRecord, error)
	// RecordOpen marks the record opened, increments open_count atomically
	// and sets opened_at only when it is still unset. Returns
	// ErrDeliveryNotFound for an unknown id.
	RecordOpen(ctx context.Context, id string, at time.Time) error
	// RecordClick merges url into the record's links list (increment the
	// matching entry or append a new one), marks the record clicked,
	// increments click_count atomically and sets clicked_at only when it is
	// still unset.
	RecordClick(ctx context.Context, id, url string, at time.Time) error
}

// ScheduleRepository persists individually scheduled emails.
type ScheduleRepository interface {
	CreateScheduledEmail(ctx context.Context, e *domain.ScheduledEmail) error
	// ListDueScheduledEmails returns emails still in 'scheduled' whose
	// scheduled_for is at or before now.
	ListDueScheduledEmails(ctx context.Context, now time.Time) ([]domain.ScheduledEmail, error)
	// MarkScheduledEmail transitions the email to a terminal status. sendErr
	// is recorded for 'failed', sentAt for 'sent'.
	MarkScheduledEmail(ctx context.Context, id, status, sendErr string, sentAt time.Time) error
}

// CampaignRepository persists bulk-send definitions and their recipient
// sets.
type CampaignRepository interface {
	CreateCampaign(ctx context.Context, c *domain.Campaign, recipients []string) error
	// ListDueCampaigns returns campaigns in 'scheduled' or 'processing'
	// whose scheduled_for is at or before now.
	ListDueCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error)
	// ClaimCampaign moves the campaign from 'scheduled' to 'processing' with
	// a conditional update. It reports false when another sweep already took
	// it.
	ClaimCampaign(ctx context.Context, id string, at time.Time) (bool, error)
	ListRecipients(ctx context.Context, campaignID string) ([]string, error)
	// MarkCampaign transitions the campaign to a terminal status.
	MarkCampaign(ctx context.Context, id, status, procErr string, at time.Time) error
}

// AnalyticsRepository mutates the singleton counters row. Increments must
// happen in a single statement; reading the row and writing a computed value
// back loses updates under concurrent tracking events.
type AnalyticsRepository interface {
	IncrementOpens(ctx context.Context, day string) error
	IncrementClicks(ctx context.Context, day string) error
	GetCounters(ctx context.Context) (*domain.AnalyticsCounters, error)
}
