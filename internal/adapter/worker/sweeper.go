package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mailtrack/internal/core/port"
)

// Sweeper periodically invokes the sweep when an in-process trigger is
// configured. POST /scheduler/run stays the primary trigger; this loop
// exists for deployments without an external cron.
type Sweeper struct {
	sweep    port.SweepUseCase
	interval time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewSweeper(sweep port.SweepUseCase, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{sweep: sweep, interval: interval, logger: logger}
}

// Start launches the poll loop. A non-positive interval disables it.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	s.wg.Add(1)
	go s.loop(ctx)
}

func (s *Sweeper) Wait() {
	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	s.logger.Info("sweep loop started", slog.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.sweep.RunSweep(ctx)
			if err != nil {
				s.logger.Error("sweep error", slog.Any("error", err))
				continue
			}
			if res.Emails.Processed > 0 || res.Campaigns.Processed > 0 {
				s.logger.Info("sweep processed due items",
					slog.Int("emails", res.Emails.Processed),
					slog.Int("campaigns", res.Campaigns.Processed),
					slog.Int("failures", len(res.Failures)))
			}
		}
	}
}
