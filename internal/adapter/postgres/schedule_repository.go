package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mailtrack/internal/core/domain"
)

// ScheduleRepository implements port.ScheduleRepository using pgxpool.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

func (r *ScheduleRepository) CreateScheduledEmail(ctx context.Context, e *domain.ScheduledEmail) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO scheduled_emails (id, to_email, subject, template, scheduled_for, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.To, e.Subject, e.Template, e.ScheduledFor, e.Status, e.CreatedAt)
	return err
}

func (r *ScheduleRepository) ListDueScheduledEmails(ctx context.Context, now time.Time) ([]domain.ScheduledEmail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, to_email, subject, template, scheduled_for, status, COALESCE(error, ''), sent_at, created_at
		FROM scheduled_emails
		WHERE status = 'scheduled' AND scheduled_for <= $1
		ORDER BY scheduled_for ASC`, now)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ScheduledEmail, error) {
		var e domain.ScheduledEmail
		err := row.Scan(&e.ID, &e.To, &e.Subject, &e.Template, &e.ScheduledFor, &e.Status, &e.Error, &e.SentAt, &e.CreatedAt)
		return e, err
	})
}

func (r *ScheduleRepository) MarkScheduledEmail(ctx context.Context, id, status, sendErr string, sentAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE scheduled_emails
		SET status = $2,
		    error = NULLIF($3, ''),
		    sent_at = CASE WHEN $2 = 'sent' THEN $4 ELSE sent_at END
		WHERE id = $1`, id, status, sendErr, sentAt)
	return err
}
