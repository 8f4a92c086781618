package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"mailtrack/internal/core/domain"
)

const publishTimeout = 5 * time.Second

// Publisher pushes tracking events onto a redis list. Publish returns before
// the LPUSH completes, so the tracking endpoints never wait on the broker.
type Publisher struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

func NewPublisher(client *redis.Client, key string, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, key: key, logger: logger}
}

func (p *Publisher) Publish(_ context.Context, evt domain.TrackingEvent) {
	body, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("marshal tracking event", slog.Any("error", err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.client.LPush(ctx, p.key, body).Err(); err != nil {
			p.logger.Error("publish tracking event",
				slog.Any("error", err), slog.String("delivery_id", evt.DeliveryID))
		}
	}()
}
