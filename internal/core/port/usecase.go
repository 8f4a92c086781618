package port

import (
	"context"
	"errors"
	"time"

	"mailtrack/internal/core/domain"
)

// ErrInvalidRequest marks request validation failures from the usecases so
// the HTTP layer can answer 400 instead of 500.
var ErrInvalidRequest = errors.New("invalid request")

// EventMeta carries request metadata captured by the tracking endpoints.
type EventMeta struct {
	IPAddress string
	UserAgent string
}

// TrackingUseCase receives recipient interactions. RecordOpen and
// RecordClick only publish the event and return immediately, so an HTTP
// response never waits on persistence. Apply performs the actual store
// mutation and is driven by the queue consumer.
type TrackingUseCase interface {
	RecordOpen(ctx context.Context, deliveryID string, meta EventMeta)
	RecordClick(ctx context.Context, deliveryID, url string, meta EventMeta)
	Apply(ctx context.Context, evt domain.TrackingEvent) error
}

// SweepUseCase processes all currently-due scheduled emails and campaigns.
type SweepUseCase interface {
	// RunSweep dispatches every due item once and returns aggregate counts.
	// Per-item failures are captured in the result, never returned as an
	// error. Safe to invoke concurrently or repeatedly.
	RunSweep(ctx context.Context) (*SweepResult, error)
}

// MailingUseCase covers immediate tracked sends, scheduling and the admin
// reads exposed under /api/v1.
type MailingUseCase interface {
	SendTracked(ctx context.Context, req SendReq) (*domain.DeliveryRecord, error)
	Schedule(ctx context.Context, req ScheduleReq) (*domain.ScheduledEmail, error)
	CreateCampaign(ctx context.Context, req CampaignReq) (*domain.Campaign, error)
	GetDelivery(ctx context.Context, id string) (*domain.DeliveryRecord, error)
	Stats(ctx context.Context) (*domain.AnalyticsCounters, error)
}

type SendReq struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}

type ScheduleReq struct {
	To           string    `json:"to"`
	Subject      string    `json:"subject"`
	Template     string    `json:"template"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

type CampaignReq struct {
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	Template     string    `json:"template"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Recipients   []string  `json:"recipients"`
}

// SweepBucket counts one category of sweep items.
type SweepBucket struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// SweepFailure is one item-level error captured during a sweep. Kind is
// "email", "campaign" or "recipient".
type SweepFailure struct {
	Kind      string `json:"kind"`
	ID        string `json:"id,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Error     string `json:"error"`
}

// SweepResult aggregates one sweep invocation.
type SweepResult struct {
	Emails         SweepBucket    `json:"emails"`
	Campaigns      SweepBucket    `json:"campaigns"`
	RecipientsSent int            `json:"recipients_sent"`
	Failures       []SweepFailure `json:"failures,omitempty"`
}
