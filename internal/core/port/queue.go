package port

import (
	"context"

	"mailtrack/internal/core/domain"
)

// EventPublisher enqueues tracking events for asynchronous processing. It
// must not block the caller on broker availability; a lost event is
// preferable to a slow tracking response.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.TrackingEvent)
}
