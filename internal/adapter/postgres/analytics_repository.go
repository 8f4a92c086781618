package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailtrack/internal/core/domain"
)

// AnalyticsRepository mutates the singleton counters row. Every increment is
// one UPDATE statement; the totals and the daily jsonb bucket move together
// under the row lock, so concurrent tracking events never lose updates.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

func (r *AnalyticsRepository) IncrementOpens(ctx context.Context, day string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE email_event_counters
		SET total_opens = total_opens + 1,
		    daily_opens = jsonb_set(daily_opens, ARRAY[$1],
		        to_jsonb(COALESCE((daily_opens->>$1)::bigint, 0) + 1))
		WHERE id = $2`, day, domain.CountersID)
	return err
}

func (r *AnalyticsRepository) IncrementClicks(ctx context.Context, day string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE email_event_counters
		SET total_clicks = total_clicks + 1,
		    daily_clicks = jsonb_set(daily_clicks, ARRAY[$1],
		        to_jsonb(COALESCE((daily_clicks->>$1)::bigint, 0) + 1))
		WHERE id = $2`, day, domain.CountersID)
	return err
}

func (r *AnalyticsRepository) GetCounters(ctx context.Context) (*domain.AnalyticsCounters, error) {
	var (
		c                   domain.AnalyticsCounters
		rawOpens, rawClicks []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT total_opens, total_clicks, daily_opens, daily_clicks
		FROM email_event_counters WHERE id = $1`, domain.CountersID).
		Scan(&c.TotalOpens, &c.TotalClicks, &rawOpens, &rawClicks)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(rawOpens, &c.DailyOpens); err != nil {
		return nil, err
	}
	if err = json.Unmarshal(rawClicks, &c.DailyClicks); err != nil {
		return nil, err
	}
	return &c, nil
}
