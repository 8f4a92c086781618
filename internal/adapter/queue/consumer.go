package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mailtrack/internal/core/domain"
	"mailtrack/internal/core/port"
)

const popTimeout = 2 * time.Second

// Consumer pops tracking events off the redis list and applies them through
// the tracking usecase. Apply errors are logged and the event dropped;
// tracking is best-effort and must never wedge the queue, and nothing from
// here ever reaches an HTTP caller.
type Consumer struct {
	client   *redis.Client
	key      string
	tracking port.TrackingUseCase
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewConsumer(client *redis.Client, key string, tracking port.TrackingUseCase, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, key: key, tracking: tracking, logger: logger}
}

// Start launches the consume loop. It exits when ctx is cancelled; Wait
// blocks until the loop has drained.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.loop(ctx)
}

func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) loop(ctx context.Context) {
	defer c.wg.Done()

	for {
		res, err := c.client.BRPop(ctx, popTimeout, c.key).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			c.logger.Error("pop tracking event", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if len(res) != 2 {
			continue
		}

		var evt domain.TrackingEvent
		if err := json.Unmarshal([]byte(res[1]), &evt); err != nil {
			c.logger.Error("bad tracking event", slog.Any("error", err))
			continue
		}
		if err := c.tracking.Apply(ctx, evt); err != nil {
			c.logger.Error("apply tracking event",
				slog.Any("error", err), slog.String("delivery_id", evt.DeliveryID))
		}
	}
}
