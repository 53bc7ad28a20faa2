package main

import (
	"context"

	"github.com/BearBump/EuroLink/config"
	"github.com/BearBump/EuroLink/internal/cache/rediscache"
	"github.com/BearBump/EuroLink/internal/integrations/mailer"
	"github.com/BearBump/EuroLink/internal/integrations/mailer/resendmail"
	"github.com/BearBump/EuroLink/internal/logger"
	"github.com/BearBump/EuroLink/internal/metrics"
	"github.com/BearBump/EuroLink/internal/services/emailretry"
	"github.com/BearBump/EuroLink/internal/storage/pgshipment"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type workerFactories struct {
	newOutbox      func(cfg *config.Config) (outbox emailretry.Outbox, closeFn func(), err error)
	newMailer      func(cfg *config.Config, log *logger.Logger) mailer.Mailer
	newRateLimiter func(cfg *config.Config) emailretry.RateLimiter
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newOutbox: func(cfg *config.Config) (emailretry.Outbox, func(), error) {
			connString := cfg.Database.ConnString()
			if connString == "" {
				return nil, nil, errors.New("mail-worker needs a database: the outbox lives in postgres")
			}
			st, err := pgshipment.New(connString)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newMailer: func(cfg *config.Config, log *logger.Logger) mailer.Mailer {
			return resendmail.New(resendmail.Config{
				Enabled:     cfg.Mailer.Enabled,
				APIKey:      cfg.Mailer.ResendAPIKey,
				FromAddress: cfg.Mailer.FromAddress,
				ReplyTo:     cfg.Mailer.ReplyTo,
			}, log)
		},
		newRateLimiter: func(cfg *config.Config) emailretry.RateLimiter {
			addr := cfg.Redis.Addr()
			if addr == "" {
				return nil
			}
			return rediscache.NewRateLimiter(addr)
		},
	}
}

func backoffFromConfig(c config.EuroLinkConfig) emailretry.BackoffConfig {
	return emailretry.BackoffConfig{
		Step1:       config.Seconds(c.WorkerBackoff1Seconds, 0),
		Step2:       config.Seconds(c.WorkerBackoff2Seconds, 0),
		Step3:       config.Seconds(c.WorkerBackoff3Seconds, 0),
		Step4:       config.Seconds(c.WorkerBackoff4Seconds, 0),
		MaxAttempts: int32(c.WorkerMaxAttempts),
	}
}

// newWorker builds the retry worker; unset settings keep the worker defaults.
func newWorker(cfg *config.Config, f workerFactories, reg prometheus.Registerer, log *logger.Logger) (*emailretry.Worker, func(), error) {
	outbox, closeFn, err := f.newOutbox(cfg)
	if err != nil {
		return nil, nil, err
	}

	c := cfg.EuroLink
	w := emailretry.New(outbox, f.newMailer(cfg, log), f.newRateLimiter(cfg), log).
		WithSettings(
			config.Seconds(c.WorkerPollIntervalSeconds, 0),
			c.WorkerBatchSize,
			c.WorkerConcurrency,
			config.Seconds(c.WorkerLeaseSeconds, 0),
			int64(c.WorkerRateLimitPerMinute),
		).
		WithBackoff(backoffFromConfig(c)).
		WithMetrics(metrics.NewShipments(reg))
	return w, closeFn, nil
}

func RunMailWorker(ctx context.Context, cfg *config.Config, f workerFactories, log *logger.Logger) error {
	w, closeFn, err := newWorker(cfg, f, nil, log)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return w.Run(ctx)
}
