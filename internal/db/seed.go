package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo data: one already-due campaign with a handful of
// recipients, one future campaign, and a couple of scheduled emails. The
// due items let a first sweep do visible work right after setup.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	now := time.Now().UTC()

	dueCampaign := uuid.NewString()
	_, err := pool.Exec(ctx, `
		INSERT INTO campaigns (id, name, subject, template, scheduled_for, status, created_at)
		VALUES ($1, 'Monthly legal digest', 'Your legal updates for this month', 'campaign.html', $2, 'scheduled', $3)
		ON CONFLICT DO NOTHING`, dueCampaign, now.Add(-time.Hour), now)
	if err != nil {
		return err
	}
	for i := 1; i <= 5; i++ {
		_, err = pool.Exec(ctx, `
			INSERT INTO campaign_recipients (campaign_id, email)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			dueCampaign, fmt.Sprintf("subscriber-%d@example.com", i))
		if err != nil {
			return err
		}
	}

	futureCampaign := uuid.NewString()
	_, err = pool.Exec(ctx, `
		INSERT INTO campaigns (id, name, subject, template, scheduled_for, status, created_at)
		VALUES ($1, 'Welcome series', 'Getting started with your consultation', 'campaign.html', $2, 'scheduled', $3)
		ON CONFLICT DO NOTHING`, futureCampaign, now.AddDate(0, 1, 0), now)
	if err != nil {
		return err
	}

	for i, offset := range []time.Duration{-30 * time.Minute, 48 * time.Hour} {
		_, err = pool.Exec(ctx, `
			INSERT INTO scheduled_emails (id, to_email, subject, template, scheduled_for, status, created_at)
			VALUES ($1, $2, 'Consultation reminder', 'basic.html', $3, 'scheduled', $4)
			ON CONFLICT DO NOTHING`,
			uuid.NewString(), fmt.Sprintf("client-%d@example.com", i+1), now.Add(offset), now)
		if err != nil {
			return err
		}
	}

	return nil
}
