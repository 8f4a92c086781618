package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mailtrack/internal/core/domain"
	"mailtrack/internal/core/port"
)

// TrackingUseCase turns recipient interactions into delivery-record and
// counter mutations. RecordOpen and RecordClick only publish; the
// persistence work happens in Apply, driven by the queue consumer, so HTTP
// responses are decoupled from store latency.
type TrackingUseCase struct {
	deliveries port.DeliveryRepository
	analytics  port.AnalyticsRepository
	pub        port.EventPublisher
	logger     *slog.Logger

	now func() time.Time
}

func NewTrackingUseCase(deliveries port.DeliveryRepository, analytics port.AnalyticsRepository, pub port.EventPublisher, logger *slog.Logger) *TrackingUseCase {
	return &TrackingUseCase{
		deliveries: deliveries,
		analytics:  analytics,
		pub:        pub,
		logger:     logger,
		now:        time.Now,
	}
}

func (u *TrackingUseCase) RecordOpen(ctx context.Context, deliveryID string, meta port.EventMeta) {
	u.pub.Publish(ctx, domain.TrackingEvent{
		Type:       domain.EventOpen,
		DeliveryID: deliveryID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		OccurredAt: u.now().UTC(),
	})
}

func (u *TrackingUseCase) RecordClick(ctx context.Context, deliveryID, url string, meta port.EventMeta) {
	u.pub.Publish(ctx, domain.TrackingEvent{
		Type:       domain.EventClick,
		DeliveryID: deliveryID,
		LinkURL:    url,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		OccurredAt: u.now().UTC(),
	})
}

// Apply performs the store mutations for one event. An event referencing an
// unknown delivery record is logged and dropped; the counters are touched
// only after the record mutation succeeded.
func (u *TrackingUseCase) Apply(ctx context.Context, evt domain.TrackingEvent) error {
	switch evt.Type {
	case domain.EventOpen:
		return u.applyOpen(ctx, evt)
	case domain.EventClick:
		return u.applyClick(ctx, evt)
	default:
		u.logger.Warn("unknown tracking event type", slog.String("type", string(evt.Type)))
		return nil
	}
}

func (u *TrackingUseCase) applyOpen(ctx context.Context, evt domain.TrackingEvent) error {
	err := u.deliveries.RecordOpen(ctx, evt.DeliveryID, evt.OccurredAt)
	if errors.Is(err, port.ErrDeliveryNotFound) {
		u.logger.Warn("open for unknown delivery", slog.String("delivery_id", evt.DeliveryID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("record open: %w", err)
	}
	if err = u.analytics.IncrementOpens(ctx, domain.DayBucket(evt.OccurredAt)); err != nil {
		return fmt.Errorf("increment opens: %w", err)
	}
	return nil
}

func (u *TrackingUseCase) applyClick(ctx context.Context, evt domain.TrackingEvent) error {
	err := u.deliveries.RecordClick(ctx, evt.DeliveryID, evt.LinkURL, evt.OccurredAt)
	if errors.Is(err, port.ErrDeliveryNotFound) {
		u.logger.Warn("click for unknown delivery", slog.String("delivery_id", evt.DeliveryID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	if err = u.analytics.IncrementClicks(ctx, domain.DayBucket(evt.OccurredAt)); err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	return nil
}
