package emailretry

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/EuroLink/internal/cache/rediscache"
	"github.com/BearBump/EuroLink/internal/integrations/mailer"
	"github.com/BearBump/EuroLink/internal/logger"
	"github.com/BearBump/EuroLink/internal/metrics"
	"github.com/BearBump/EuroLink/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Outbox interface {
	ClaimDueEmails(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.OutboundEmail, error)
	MarkEmailSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	RescheduleEmail(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, lastErr string) error
	AbandonEmail(ctx context.Context, id uuid.UUID, lastErr string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

const rateLimitKey = "rl:mail"

// Settings are the tunables exposed on the worker's /config endpoint.
type Settings struct {
	PollInterval       time.Duration `json:"pollInterval"`
	BatchSize          int           `json:"batchSize"`
	Concurrency        int           `json:"concurrency"`
	Lease              time.Duration `json:"lease"`
	RateLimitPerMinute int64         `json:"rateLimitPerMinute"`
	Backoff            BackoffConfig `json:"backoff"`
}

// Worker resends emails from the outbox until they are delivered or give up.
type Worker struct {
	outbox  Outbox
	mailer  mailer.Mailer
	rl      RateLimiter
	backoff *Backoff
	metrics *metrics.Shipments
	log     *logger.Logger

	pollInterval       time.Duration
	batchSize          int
	concurrency        int
	lease              time.Duration
	rateLimitPerMinute int64

	triggerCh chan struct{}
	now       func() time.Time

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalClaimed        atomic.Int64
	totalSent           atomic.Int64
	totalRescheduled    atomic.Int64
	totalAbandoned      atomic.Int64
	totalRateLimited    atomic.Int64
	totalErrors         atomic.Int64
	inFlight            atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(outbox Outbox, m mailer.Mailer, rl RateLimiter, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.NewNop()
	}
	return &Worker{
		outbox:             outbox,
		mailer:             m,
		rl:                 rl,
		backoff:            NewBackoff(DefaultBackoffConfig()),
		log:                log.Named("emailretry"),
		pollInterval:       5 * time.Second,
		batchSize:          50,
		concurrency:        4,
		lease:              2 * time.Minute,
		rateLimitPerMinute: 60,
		triggerCh:          make(chan struct{}, 1),
		now:                func() time.Time { return time.Now().UTC() },
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (w *Worker) WithSettings(pollInterval time.Duration, batchSize, concurrency int, lease time.Duration, rlPerMin int64) *Worker {
	if pollInterval > 0 {
		w.pollInterval = pollInterval
	}
	if batchSize > 0 {
		w.batchSize = batchSize
	}
	if concurrency > 0 {
		w.concurrency = concurrency
	}
	if lease > 0 {
		w.lease = lease
	}
	if rlPerMin > 0 {
		w.rateLimitPerMinute = rlPerMin
	}
	return w
}

func (w *Worker) WithBackoff(cfg BackoffConfig) *Worker {
	w.backoff = NewBackoff(cfg)
	return w
}

func (w *Worker) WithMetrics(m *metrics.Shipments) *Worker {
	w.metrics = m
	return w
}

func (w *Worker) Settings() Settings {
	return Settings{
		PollInterval:       w.pollInterval,
		BatchSize:          w.batchSize,
		Concurrency:        w.concurrency,
		Lease:              w.lease,
		RateLimitPerMinute: w.rateLimitPerMinute,
		Backoff:            w.backoff.Config(),
	}
}

// Trigger asks for an immediate cycle without blocking.
func (w *Worker) Trigger() {
	w.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt        time.Time  `json:"startedAt"`
	LastCycleAt      *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt    *time.Time `json:"lastTriggerAt,omitempty"`
	TotalClaimed     int64      `json:"totalClaimed"`
	TotalSent        int64      `json:"totalSent"`
	TotalRescheduled int64      `json:"totalRescheduled"`
	TotalAbandoned   int64      `json:"totalAbandoned"`
	TotalRateLimited int64      `json:"totalRateLimited"`
	TotalErrors      int64      `json:"totalErrors"`
	InFlight         int64      `json:"inFlight"`
	LastError        string     `json:"lastError,omitempty"`
}

func (w *Worker) Stats() Stats {
	st := Stats{
		StartedAt:        time.Unix(0, w.startedAtUnixNano).UTC(),
		TotalClaimed:     w.totalClaimed.Load(),
		TotalSent:        w.totalSent.Load(),
		TotalRescheduled: w.totalRescheduled.Load(),
		TotalAbandoned:   w.totalAbandoned.Load(),
		TotalRateLimited: w.totalRateLimited.Load(),
		TotalErrors:      w.totalErrors.Load(),
		InFlight:         w.inFlight.Load(),
	}
	if n := w.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := w.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	w.lastErrorMu.Lock()
	st.LastError = w.lastError
	w.lastErrorMu.Unlock()
	return st
}

func (w *Worker) Run(ctx context.Context) error {
	t := time.NewTicker(w.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			w.runOnce(ctx)
		case <-w.triggerCh:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	started := time.Now()
	now := w.now()
	w.lastCycleUnixNano.Store(now.UnixNano())

	items, err := w.outbox.ClaimDueEmails(ctx, now, w.batchSize, w.lease)
	if err != nil {
		w.log.Errorw("claim due emails", "error", err)
		w.setLastError(err)
		w.metrics.RetryBatch("error", time.Since(started))
		return
	}
	w.totalClaimed.Add(int64(len(items)))

	sem := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup
	for _, e := range items {
		sem <- struct{}{}
		wg.Add(1)
		w.inFlight.Add(1)
		go func(e *models.OutboundEmail) {
			defer func() {
				w.inFlight.Add(-1)
				<-sem
				wg.Done()
			}()
			if err := w.processOne(ctx, e); err != nil {
				w.totalErrors.Add(1)
				w.setLastError(err)
				w.log.Errorw("process outbound email", "email_id", e.ID, "error", err)
			}
		}(e)
	}
	wg.Wait()
	w.metrics.RetryBatch("ok", time.Since(started))
}

func (w *Worker) processOne(ctx context.Context, e *models.OutboundEmail) error {
	now := w.now()

	if w.rl != nil && w.rateLimitPerMinute > 0 {
		allowed, n, err := w.rl.Allow(ctx, rediscache.WindowKey(rateLimitKey, now), w.rateLimitPerMinute, 70*time.Second)
		if err != nil {
			return err
		}
		if !allowed {
			// the lease expires and the row becomes due again
			w.totalRateLimited.Add(1)
			w.log.Warnw("rate limit exceeded", "count", n)
			return nil
		}
	}

	sendErr := w.send(ctx, e)
	if sendErr == nil {
		w.totalSent.Add(1)
		w.metrics.Email(string(e.Kind), "retried")
		return errors.Wrap(w.outbox.MarkEmailSent(ctx, e.ID, now), "mark email sent")
	}

	w.metrics.Email(string(e.Kind), "retry_failed")
	failed := e.Attempts + 1
	if w.backoff.Exhausted(failed) {
		w.totalAbandoned.Add(1)
		w.log.Warnw("giving up on email", "email_id", e.ID, "attempts", failed, "error", sendErr)
		return errors.Wrap(w.outbox.AbandonEmail(ctx, e.ID, sendErr.Error()), "abandon email")
	}
	w.totalRescheduled.Add(1)
	next := now.Add(w.backoff.Delay(failed))
	return errors.Wrap(w.outbox.RescheduleEmail(ctx, e.ID, next, sendErr.Error()), "reschedule email")
}

func (w *Worker) send(ctx context.Context, e *models.OutboundEmail) error {
	switch e.Kind {
	case models.EmailKindStatus:
		var m mailer.StatusEmail
		if err := json.Unmarshal(e.Payload, &m); err != nil {
			return errors.Wrap(err, "decode status email")
		}
		_, err := w.mailer.SendStatusEmail(ctx, m)
		return err
	case models.EmailKindDriverAssignment:
		var m mailer.DriverAssignmentEmail
		if err := json.Unmarshal(e.Payload, &m); err != nil {
			return errors.Wrap(err, "decode assignment email")
		}
		_, err := w.mailer.SendDriverAssignmentEmail(ctx, m)
		return err
	}
	return errors.Errorf("unknown email kind %q", e.Kind)
}

func (w *Worker) setLastError(err error) {
	w.lastErrorMu.Lock()
	w.lastError = err.Error()
	w.lastErrorMu.Unlock()
}
