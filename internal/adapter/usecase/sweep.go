package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mailtrack/internal/core/domain"
	"mailtrack/internal/core/port"
)

// SweepUseCase implements the scheduler sweep: one externally triggered pass
// over all currently-due scheduled emails and campaigns. Each due item is
// processed to completion or failure before the next; a second overlapping
// sweep finds already-taken items filtered out by their status.
type SweepUseCase struct {
	schedules  port.ScheduleRepository
	campaigns  port.CampaignRepository
	deliveries port.DeliveryRepository
	mailer     port.Mailer
	links      *LinkInstrumenter
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewSweepUseCase(
	schedules port.ScheduleRepository,
	campaigns port.CampaignRepository,
	deliveries port.DeliveryRepository,
	mailer port.Mailer,
	baseURL string,
	logger *slog.Logger,
) *SweepUseCase {
	return &SweepUseCase{
		schedules:  schedules,
		campaigns:  campaigns,
		deliveries: deliveries,
		mailer:     mailer,
		links:      NewLinkInstrumenter(baseURL),
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// RunSweep dispatches every due scheduled email and campaign once. Item
// failures end up in the result, not in the returned error.
func (u *SweepUseCase) RunSweep(ctx context.Context) (*port.SweepResult, error) {
	res := &port.SweepResult{}
	now := u.now().UTC()

	u.sweepScheduledEmails(ctx, now, res)
	u.sweepCampaigns(ctx, now, res)

	u.logger.Info("sweep finished",
		slog.Int("emails_processed", res.Emails.Processed),
		slog.Int("campaigns_processed", res.Campaigns.Processed),
		slog.Int("failures", len(res.Failures)))
	return res, nil
}

func (u *SweepUseCase) sweepScheduledEmails(ctx context.Context, now time.Time, res *port.SweepResult) {
	due, err := u.schedules.ListDueScheduledEmails(ctx, now)
	if err != nil {
		u.logger.Error("list due scheduled emails", slog.Any("error", err))
		res.Failures = append(res.Failures, port.SweepFailure{Kind: "email", Error: err.Error()})
		return
	}

	for _, e := range due {
		res.Emails.Processed++
		if err := u.dispatchScheduled(ctx, e); err != nil {
			res.Emails.Failed++
			res.Failures = append(res.Failures, port.SweepFailure{Kind: "email", ID: e.ID, Error: err.Error()})
			// the email still leaves 'scheduled' so the next sweep does not
			// re-deliver it
			if markErr := u.schedules.MarkScheduledEmail(ctx, e.ID, domain.EmailStatusFailed, err.Error(), now); markErr != nil {
				u.logger.Error("mark scheduled email failed", slog.Any("error", markErr), slog.String("id", e.ID))
			}
			continue
		}
		res.Emails.Sent++
		if markErr := u.schedules.MarkScheduledEmail(ctx, e.ID, domain.EmailStatusSent, "", u.now().UTC()); markErr != nil {
			u.logger.Error("mark scheduled email sent", slog.Any("error", markErr), slog.String("id", e.ID))
		}
	}
}

func (u *SweepUseCase) dispatchScheduled(ctx context.Context, e domain.ScheduledEmail) error {
	html, err := u.mailer.Render(e.Template, map[string]any{"Subject": e.Subject, "To": e.To})
	if err != nil {
		return fmt.Errorf("render %q: %w", e.Template, err)
	}
	return u.mailer.Send(ctx, port.Message{To: e.To, Subject: e.Subject, HTML: html})
}

func (u *SweepUseCase) sweepCampaigns(ctx context.Context, now time.Time, res *port.SweepResult) {
	due, err := u.campaigns.ListDueCampaigns(ctx, now)
	if err != nil {
		u.logger.Error("list due campaigns", slog.Any("error", err))
		res.Failures = append(res.Failures, port.SweepFailure{Kind: "campaign", Error: err.Error()})
		return
	}

	for _, c := range due {
		if c.Status == domain.CampaignStatusProcessing {
			// another sweep holds the claim
			u.logger.Info("campaign already processing, skipping", slog.String("campaign_id", c.ID))
			continue
		}
		claimed, err := u.campaigns.ClaimCampaign(ctx, c.ID, now)
		if err != nil {
			res.Failures = append(res.Failures, port.SweepFailure{Kind: "campaign", ID: c.ID, Error: err.Error()})
			continue
		}
		if !claimed {
			u.logger.Info("campaign claimed by concurrent sweep", slog.String("campaign_id", c.ID))
			continue
		}
		res.Campaigns.Processed++
		u.dispatchCampaign(ctx, c, res)
	}
}

func (u *SweepUseCase) dispatchCampaign(ctx context.Context, c domain.Campaign, res *port.SweepResult) {
	fail := func(err error) {
		res.Campaigns.Failed++
		res.Failures = append(res.Failures, port.SweepFailure{Kind: "campaign", ID: c.ID, Error: err.Error()})
		if markErr := u.campaigns.MarkCampaign(ctx, c.ID, domain.CampaignStatusFailed, err.Error(), u.now().UTC()); markErr != nil {
			u.logger.Error("mark campaign failed", slog.Any("error", markErr), slog.String("campaign_id", c.ID))
		}
	}

	recipients, err := u.campaigns.ListRecipients(ctx, c.ID)
	if err != nil {
		fail(fmt.Errorf("list recipients: %w", err))
		return
	}

	// zero recipients means nothing to dispatch, the campaign is sent
	if len(recipients) == 0 {
		res.Campaigns.Sent++
		if err := u.campaigns.MarkCampaign(ctx, c.ID, domain.CampaignStatusSent, "", u.now().UTC()); err != nil {
			u.logger.Error("mark campaign sent", slog.Any("error", err), slog.String("campaign_id", c.ID))
		}
		return
	}

	html, err := u.mailer.Render(c.Template, map[string]any{"Subject": c.Subject, "Campaign": c.Name})
	if err != nil {
		fail(fmt.Errorf("render %q: %w", c.Template, err))
		return
	}

	sent := 0
	for _, rcpt := range recipients {
		id := u.newID()
		body := u.links.Instrument(html, id)
		if err := u.mailer.Send(ctx, port.Message{To: rcpt, Subject: c.Subject, HTML: body}); err != nil {
			res.Failures = append(res.Failures, port.SweepFailure{Kind: "recipient", ID: c.ID, Recipient: rcpt, Error: err.Error()})
			continue
		}
		rec := &domain.DeliveryRecord{
			ID:         id,
			Recipient:  rcpt,
			Subject:    c.Subject,
			Template:   c.Template,
			CampaignID: &c.ID,
			SentAt:     u.now().UTC(),
			Links:      []domain.LinkStat{},
		}
		if err := u.deliveries.CreateDelivery(ctx, rec); err != nil {
			u.logger.Error("create delivery record", slog.Any("error", err), slog.String("delivery_id", id))
		}
		sent++
	}
	res.RecipientsSent += sent

	if sent == 0 {
		fail(fmt.Errorf("all %d recipients failed", len(recipients)))
		return
	}
	res.Campaigns.Sent++
	if err := u.campaigns.MarkCampaign(ctx, c.ID, domain.CampaignStatusSent, "", u.now().UTC()); err != nil {
		u.logger.Error("mark campaign sent", slog.Any("error", err), slog.String("campaign_id", c.ID))
	}
}
