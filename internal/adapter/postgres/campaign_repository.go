package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mailtrack/internal/core/domain"
)

// CampaignRepository implements port.CampaignRepository using pgxpool.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

func (r *CampaignRepository) CreateCampaign(ctx context.Context, c *domain.Campaign, recipients []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO campaigns (id, name, subject, template, scheduled_for, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.Subject, c.Template, c.ScheduledFor, c.Status, c.CreatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, email := range recipients {
		batch.Queue(`
			INSERT INTO campaign_recipients (campaign_id, email)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, c.ID, email)
	}
	err = tx.SendBatch(ctx, batch).Close()
	return err
}

func (r *CampaignRepository) ListDueCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, subject, template, scheduled_for, status, COALESCE(error, ''),
		       started_at, completed_at, created_at
		FROM campaigns
		WHERE status IN ('scheduled', 'processing') AND scheduled_for <= $1
		ORDER BY scheduled_for ASC`, now)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		var c domain.Campaign
		err := row.Scan(&c.ID, &c.Name, &c.Subject, &c.Template, &c.ScheduledFor, &c.Status, &c.Error,
			&c.StartedAt, &c.CompletedAt, &c.CreatedAt)
		return c, err
	})
}

// ClaimCampaign is the conditional status transition that establishes the
// single-processor claim. The WHERE clause makes it a compare-and-set: of
// two concurrent sweeps only one sees a row affected.
func (r *CampaignRepository) ClaimCampaign(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE campaigns
		SET status = 'processing', started_at = $2
		WHERE id = $1 AND status = 'scheduled'`, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CampaignRepository) ListRecipients(ctx context.Context, campaignID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT email FROM campaign_recipients WHERE campaign_id = $1 ORDER BY email`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *CampaignRepository) MarkCampaign(ctx context.Context, id, status, procErr string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE campaigns
		SET status = $2,
		    error = NULLIF($3, ''),
		    completed_at = $4
		WHERE id = $1`, id, status, procErr, at)
	return err
}
