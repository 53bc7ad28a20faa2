package shipments

import (
	"context"
	"time"

	"github.com/BearBump/EuroLink/internal/broker/messages"
	"github.com/BearBump/EuroLink/internal/cache"
	"github.com/BearBump/EuroLink/internal/integrations/mailer"
	"github.com/BearBump/EuroLink/internal/logger"
	"github.com/BearBump/EuroLink/internal/metrics"
	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RecipientResolver finds the email address of a user.
type RecipientResolver interface {
	ResolveRecipientEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// EmailQueue stores emails that failed to send so a worker can retry them.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, kind models.EmailKind, payload []byte, nextAttemptAt time.Time, lastErr string) error
}

// Deps are the collaborators of the Service. Store, Mailer and Recipients are
// required; the rest may be nil.
type Deps struct {
	Store      storage.Datastore
	Mailer     mailer.Mailer
	Recipients RecipientResolver
	Publisher  Publisher
	Outbox     EmailQueue
	Cache      cache.BytesCache
	Metrics    *metrics.Shipments
	Log        *logger.Logger
}

type Config struct {
	Policy status.Policy
	// TrackTTL is the lifetime of cached tracking pages; zero disables caching.
	TrackTTL time.Duration
	// RetryDelay is how long a failed email waits before its first retry.
	RetryDelay time.Duration
	// EventTopic defaults to messages.TopicStatusChanged.
	EventTopic string
}

type Service struct {
	store      storage.Datastore
	mailer     mailer.Mailer
	recipients RecipientResolver
	publisher  Publisher
	outbox     EmailQueue
	cache      cache.BytesCache
	metrics    *metrics.Shipments
	log        *logger.Logger
	validate   *validator.Validate

	policy     status.Policy
	trackTTL   time.Duration
	retryDelay time.Duration
	eventTopic string

	now func() time.Time
}

func New(deps Deps, cfg Config) *Service {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Policy == "" {
		cfg.Policy = status.PolicyLenient
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Minute
	}
	if cfg.EventTopic == "" {
		cfg.EventTopic = messages.TopicStatusChanged
	}
	return &Service{
		store:      deps.Store,
		mailer:     deps.Mailer,
		recipients: deps.Recipients,
		publisher:  deps.Publisher,
		outbox:     deps.Outbox,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		log:        log.Named("shipments"),
		validate:   validator.New(),
		policy:     cfg.Policy,
		trackTTL:   cfg.TrackTTL,
		retryDelay: cfg.RetryDelay,
		eventTopic: cfg.EventTopic,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Policy() status.Policy {
	return s.policy
}

// withinTx runs fn in a transaction when the store supports one.
func (s *Service) withinTx(ctx context.Context, fn func(ds storage.Datastore) error) error {
	if tx, ok := s.store.(storage.Transactor); ok {
		return tx.WithinTx(ctx, fn)
	}
	return fn(s.store)
}

func (s *Service) getShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	sh, err := s.store.GetShipment(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "shipment %s", id)
		}
		return nil, errors.Wrap(err, "get shipment")
	}
	return sh, nil
}

func (s *Service) warn(ws *Warnings, code WarningCode, err error, kv ...any) {
	ws.add(code, err)
	s.metrics.Warning(string(code))
	s.log.Warnw("side effect failed", append([]any{"code", code, "error", err}, kv...)...)
}
