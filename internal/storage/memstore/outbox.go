package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	outboxPending   = "pending"
	outboxSent      = "sent"
	outboxAbandoned = "abandoned"
)

func (s *Store) EnqueueEmail(_ context.Context, kind models.EmailKind, payload []byte, nextAttemptAt time.Time, lastErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	e := models.OutboundEmail{
		ID:            id,
		Kind:          kind,
		Payload:       append([]byte(nil), payload...),
		Attempts:      1,
		NextAttemptAt: nextAttemptAt,
		CreatedAt:     time.Now().UTC(),
	}
	if lastErr != "" {
		le := lastErr
		e.LastError = &le
	}
	s.st.outbox[id] = outboxRow{email: e, state: outboxPending}
	return nil
}

func (s *Store) ClaimDueEmails(_ context.Context, now time.Time, limit int, lease time.Duration) ([]*models.OutboundEmail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := make([]uuid.UUID, 0)
	for id, row := range s.st.outbox {
		if row.state == outboxPending && !row.email.NextAttemptAt.After(now) {
			due = append(due, id)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return s.st.outbox[due[i]].email.NextAttemptAt.Before(s.st.outbox[due[j]].email.NextAttemptAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	out := make([]*models.OutboundEmail, 0, len(due))
	for _, id := range due {
		row := s.st.outbox[id]
		row.email.NextAttemptAt = now.Add(lease)
		s.st.outbox[id] = row
		e := row.email
		out = append(out, &e)
	}
	return out, nil
}

func (s *Store) MarkEmailSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	return s.updateOutbox(id, "mark email sent", func(row *outboxRow) {
		row.state = outboxSent
		row.email.Attempts++
		row.email.LastError = nil
		t := sentAt
		row.email.SentAt = &t
	})
}

func (s *Store) RescheduleEmail(_ context.Context, id uuid.UUID, nextAttemptAt time.Time, lastErr string) error {
	return s.updateOutbox(id, "reschedule email", func(row *outboxRow) {
		row.email.Attempts++
		row.email.NextAttemptAt = nextAttemptAt
		le := lastErr
		row.email.LastError = &le
	})
}

func (s *Store) AbandonEmail(_ context.Context, id uuid.UUID, lastErr string) error {
	return s.updateOutbox(id, "abandon email", func(row *outboxRow) {
		row.state = outboxAbandoned
		row.email.Attempts++
		le := lastErr
		row.email.LastError = &le
	})
}

// PendingEmails reports how many outbox rows still wait for delivery.
func (s *Store) PendingEmails() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, row := range s.st.outbox {
		if row.state == outboxPending {
			n++
		}
	}
	return n
}

func (s *Store) updateOutbox(id uuid.UUID, op string, fn func(row *outboxRow)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.st.outbox[id]
	if !ok {
		return errors.Wrap(storage.ErrNotFound, op)
	}
	fn(&row)
	s.st.outbox[id] = row
	return nil
}
