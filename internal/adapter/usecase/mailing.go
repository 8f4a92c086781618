package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mailtrack/internal/core/domain"
	"mailtrack/internal/core/port"
)

// MailingUseCase covers immediate tracked sends, scheduling of individual
// emails and campaigns, and the admin reads. Scheduled items are only
// registered here; dispatch belongs to the sweep.
type MailingUseCase struct {
	deliveries port.DeliveryRepository
	schedules  port.ScheduleRepository
	campaigns  port.CampaignRepository
	analytics  port.AnalyticsRepository
	mailer     port.Mailer
	links      *LinkInstrumenter

	now   func() time.Time
	newID func() string
}

func NewMailingUseCase(
	deliveries port.DeliveryRepository,
	schedules port.ScheduleRepository,
	campaigns port.CampaignRepository,
	analytics port.AnalyticsRepository,
	mailer port.Mailer,
	baseURL string,
) *MailingUseCase {
	return &MailingUseCase{
		deliveries: deliveries,
		schedules:  schedules,
		campaigns:  campaigns,
		analytics:  analytics,
		mailer:     mailer,
		links:      NewLinkInstrumenter(baseURL),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// SendTracked renders and sends one email immediately and registers its
// delivery record. The record is created only after the transport accepted
// the message, with sent_at set once at dispatch.
func (u *MailingUseCase) SendTracked(ctx context.Context, req port.SendReq) (*domain.DeliveryRecord, error) {
	if req.To == "" {
		return nil, fmt.Errorf("%w: recipient is required", port.ErrInvalidRequest)
	}
	if req.Template == "" {
		return nil, fmt.Errorf("%w: template is required", port.ErrInvalidRequest)
	}

	html, err := u.mailer.Render(req.Template, req.Data)
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", req.Template, err)
	}

	id := u.newID()
	body := u.links.Instrument(html, id)
	if err := u.mailer.Send(ctx, port.Message{To: req.To, Subject: req.Subject, HTML: body}); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	rec := &domain.DeliveryRecord{
		ID:        id,
		Recipient: req.To,
		Subject:   req.Subject,
		Template:  req.Template,
		SentAt:    u.now().UTC(),
		Links:     []domain.LinkStat{},
	}
	if err := u.deliveries.CreateDelivery(ctx, rec); err != nil {
		return nil, fmt.Errorf("create delivery record: %w", err)
	}
	return rec, nil
}

// Schedule registers an individual email for a later sweep. A scheduled_for
// in the past is allowed; the next sweep simply finds it due.
func (u *MailingUseCase) Schedule(ctx context.Context, req port.ScheduleReq) (*domain.ScheduledEmail, error) {
	if req.To == "" {
		return nil, fmt.Errorf("%w: recipient is required", port.ErrInvalidRequest)
	}
	if req.Template == "" {
		return nil, fmt.Errorf("%w: template is required", port.ErrInvalidRequest)
	}
	if req.ScheduledFor.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_for is required", port.ErrInvalidRequest)
	}

	e := &domain.ScheduledEmail{
		ID:           u.newID(),
		To:           req.To,
		Subject:      req.Subject,
		Template:     req.Template,
		ScheduledFor: req.ScheduledFor.UTC(),
		Status:       domain.EmailStatusScheduled,
		CreatedAt:    u.now().UTC(),
	}
	if err := u.schedules.CreateScheduledEmail(ctx, e); err != nil {
		return nil, fmt.Errorf("create scheduled email: %w", err)
	}
	return e, nil
}

// CreateCampaign registers a bulk send with its recipient set.
func (u *MailingUseCase) CreateCampaign(ctx context.Context, req port.CampaignReq) (*domain.Campaign, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", port.ErrInvalidRequest)
	}
	if req.Template == "" {
		return nil, fmt.Errorf("%w: template is required", port.ErrInvalidRequest)
	}
	if req.ScheduledFor.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_for is required", port.ErrInvalidRequest)
	}

	c := &domain.Campaign{
		ID:           u.newID(),
		Name:         req.Name,
		Subject:      req.Subject,
		Template:     req.Template,
		ScheduledFor: req.ScheduledFor.UTC(),
		Status:       domain.CampaignStatusScheduled,
		CreatedAt:    u.now().UTC(),
	}
	if err := u.campaigns.CreateCampaign(ctx, c, req.Recipients); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return c, nil
}

func (u *MailingUseCase) GetDelivery(ctx context.Context, id string) (*domain.DeliveryRecord, error) {
	return u.deliveries.GetDelivery(ctx, id)
}

func (u *MailingUseCase) Stats(ctx context.Context) (*domain.AnalyticsCounters, error) {
	return u.analytics.GetCounters(ctx)
}
