package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mailtrack/internal/core/domain"
	"mailtrack/internal/core/port"
)

// DeliveryRepository implements port.DeliveryRepository using pgxpool.
// Counter columns are incremented server-side in a single statement so
// concurrent tracking events never lose updates.
type DeliveryRepository struct {
	pool *pgxpool.Pool
}

func NewDeliveryRepository(pool *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

func (r *DeliveryRepository) CreateDelivery(ctx context.Context, d *domain.DeliveryRecord) error {
	links := d.Links
	if links == nil {
		links = []domain.LinkStat{}
	}
	raw, err := json.Marshal(links)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO deliveries (id, recipient, subject, template, campaign_id, sent_at, links)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.Recipient, d.Subject, d.Template, d.CampaignID, d.SentAt, raw)
	return err
}

func (r *DeliveryRepository) GetDelivery(ctx context.Context, id string) (*domain.DeliveryRecord, error) {
	var (
		d   domain.DeliveryRecord
		raw []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, recipient, subject, template, campaign_id, sent_at,
		       opened, open_count, opened_at, clicked, click_count, clicked_at, links
		FROM deliveries WHERE id = $1`, id).
		Scan(&d.ID, &d.Recipient, &d.Subject, &d.Template, &d.CampaignID, &d.SentAt,
			&d.Opened, &d.OpenCount, &d.OpenedAt, &d.Clicked, &d.ClickCount, &d.ClickedAt, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrDeliveryNotFound
	}
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(raw, &d.Links); err != nil {
		return nil, err
	}
	return &d, nil
}

// RecordOpen flips opened, increments open_count and keeps the first
// opened_at. COALESCE makes the timestamp first-write-wins in the same
// statement as the increment.
func (r *DeliveryRepository) RecordOpen(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deliveries
		SET opened = TRUE,
		    open_count = open_count + 1,
		    opened_at = COALESCE(opened_at, $2)
		WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrDeliveryNotFound
	}
	return nil
}

// RecordClick merges url into the links list and bumps the click fields.
// The links array goes through a read-modify-write, so two simultaneous
// clicks on the same URL can under-count that entry; click_count itself
// stays exact through the server-side increment.
func (r *DeliveryRepository) RecordClick(ctx context.Context, id, url string, at time.Time) error {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT links FROM deliveries WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return port.ErrDeliveryNotFound
	}
	if err != nil {
		return err
	}

	var links []domain.LinkStat
	if len(raw) > 0 {
		if err = json.Unmarshal(raw, &links); err != nil {
			return err
		}
	}
	links = domain.MergeLink(links, url)
	updated, err := json.Marshal(links)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE deliveries
		SET links = $2,
		    clicked = TRUE,
		    click_count = click_count + 1,
		    clicked_at = COALESCE(clicked_at, $3)
		WHERE id = $1`, id, updated, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrDeliveryNotFound
	}
	return nil
}
