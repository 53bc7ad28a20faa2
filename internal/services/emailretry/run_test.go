package emailretry

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/EuroLink/internal/integrations/mailer/fake"
	"github.com/BearBump/EuroLink/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type countingOutbox struct {
	calls int
}

func (o *countingOutbox) ClaimDueEmails(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.OutboundEmail, error) {
	o.calls++
	return nil, nil
}

func (o *countingOutbox) MarkEmailSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	return nil
}

func (o *countingOutbox) RescheduleEmail(ctx context.Context, id uuid.UUID, next time.Time, lastErr string) error {
	return nil
}

func (o *countingOutbox) AbandonEmail(ctx context.Context, id uuid.UUID, lastErr string) error {
	return nil
}

func TestWorker_Run_StopsOnContextCancel(t *testing.T) {
	ob := &countingOutbox{}
	w := New(ob, fake.New(), nil, nil).WithSettings(5*time.Millisecond, 1, 1, time.Second, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.GreaterOrEqual(t, ob.calls, 1)
}

func TestWorker_Trigger(t *testing.T) {
	ob := &countingOutbox{}
	w := New(ob, fake.New(), nil, nil).WithSettings(time.Hour, 1, 1, time.Second, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.Trigger()
	require.Eventually(t, func() bool { return w.Stats().LastCycleAt != nil }, time.Second, 5*time.Millisecond)
	require.NotNil(t, w.Stats().LastTriggerAt)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
