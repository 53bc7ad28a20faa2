package pgshipment

import (
	"context"
	"time"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) EnqueueEmail(ctx context.Context, kind models.EmailKind, payload []byte, nextAttemptAt time.Time, lastErr string) error {
	var le *string
	if lastErr != "" {
		le = &lastErr
	}
	_, err := s.db.Exec(ctx, `
INSERT INTO email_outbox (id, kind, payload, state, attempts, next_attempt_at, last_error, created_at)
VALUES ($1,$2,$3::jsonb,'pending',1,$4,$5,now())
`, uuid.New(), string(kind), string(payload), nextAttemptAt.UTC(), le)
	return errors.Wrap(err, "enqueue email")
}

// ClaimDueEmails picks pending emails whose next attempt is due and leases
// them by pushing next_attempt_at forward, so concurrent workers skip them.
// Uses SELECT ... FOR UPDATE SKIP LOCKED.
func (s *Storage) ClaimDueEmails(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.OutboundEmail, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
SELECT id, kind, payload::text, attempts, next_attempt_at, last_error, sent_at, created_at
FROM email_outbox
WHERE state = 'pending'
  AND next_attempt_at <= $1
ORDER BY next_attempt_at ASC
LIMIT $2
FOR UPDATE SKIP LOCKED
`, now.UTC(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "select due emails")
	}
	defer rows.Close()

	var picked []*models.OutboundEmail
	for rows.Next() {
		var e models.OutboundEmail
		var kind, payload string
		if err := rows.Scan(&e.ID, &kind, &payload, &e.Attempts, &e.NextAttemptAt, &e.LastError, &e.SentAt, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan due email")
		}
		e.Kind = models.EmailKind(kind)
		e.Payload = []byte(payload)
		picked = append(picked, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	rows.Close()

	leaseUntil := now.UTC().Add(lease)
	for _, e := range picked {
		if _, err := tx.Exec(ctx, `UPDATE email_outbox SET next_attempt_at = $2 WHERE id = $1`, e.ID, leaseUntil); err != nil {
			return nil, errors.Wrap(err, "lease email")
		}
		e.NextAttemptAt = leaseUntil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return picked, nil
}

func (s *Storage) MarkEmailSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	_, err := s.db.Exec(ctx, `
UPDATE email_outbox
SET state = 'sent', sent_at = $2, attempts = attempts + 1, last_error = NULL
WHERE id = $1
`, id, sentAt.UTC())
	return errors.Wrap(err, "mark email sent")
}

func (s *Storage) RescheduleEmail(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, lastErr string) error {
	_, err := s.db.Exec(ctx, `
UPDATE email_outbox
SET attempts = attempts + 1, next_attempt_at = $2, last_error = $3
WHERE id = $1
`, id, nextAttemptAt.UTC(), lastErr)
	return errors.Wrap(err, "reschedule email")
}

func (s *Storage) AbandonEmail(ctx context.Context, id uuid.UUID, lastErr string) error {
	_, err := s.db.Exec(ctx, `
UPDATE email_outbox
SET state = 'abandoned', attempts = attempts + 1, last_error = $2
WHERE id = $1
`, id, lastErr)
	return errors.Wrap(err, "abandon email")
}
