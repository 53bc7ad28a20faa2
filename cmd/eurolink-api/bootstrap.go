package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/EuroLink/config"
	"github.com/BearBump/EuroLink/internal/broker/kafka"
	"github.com/BearBump/EuroLink/internal/broker/messages"
	"github.com/BearBump/EuroLink/internal/cache"
	"github.com/BearBump/EuroLink/internal/cache/rediscache"
	"github.com/BearBump/EuroLink/internal/integrations/accounts/supabaseacct"
	"github.com/BearBump/EuroLink/internal/integrations/mailer/resendmail"
	"github.com/BearBump/EuroLink/internal/logger"
	"github.com/BearBump/EuroLink/internal/metrics"
	"github.com/BearBump/EuroLink/internal/services/notifications"
	"github.com/BearBump/EuroLink/internal/services/recipients"
	"github.com/BearBump/EuroLink/internal/services/shipments"
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/BearBump/EuroLink/internal/storage/memstore"
	"github.com/BearBump/EuroLink/internal/storage/pgshipment"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

// datastore is everything the API needs from persistence. Both the Postgres
// and the in-memory stores satisfy it.
type datastore interface {
	storage.Datastore
	storage.NotificationStore
	storage.EmailOutbox
	ProfileEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

var (
	_ datastore = (*pgshipment.Storage)(nil)
	_ datastore = (*memstore.Store)(nil)
)

type eurolinkAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     eurolinkAPIOpts
	log      *logger.Logger
	ships    *shipments.Service
	notes    *notifications.Service
	consumer scanConsumer
	closers  []func() error
}

func mustBootstrapEuroLinkAPI() *eurolinkAPIApp {
	if err := godotenv.Load(); err != nil {
		logger.L.Debugw(".env file not found, relying on environment")
	}

	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("config parse error: %v", err))
	}

	log, err := logger.New(cfg.EuroLink.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("logger init: %v", err))
	}
	logger.L = log

	if err := status.Validate(); err != nil {
		panic(fmt.Sprintf("status registry: %v", err))
	}
	policy, err := status.ParsePolicy(cfg.EuroLink.TransitionPolicy)
	if err != nil {
		panic(err)
	}

	grpcAddr := cfg.EuroLink.GRPCAddr
	if grpcAddr == "" {
		grpcAddr = ":50051"
	}
	httpAddr := cfg.EuroLink.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.EuroLink.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "eurolink-api"
	}
	scansTopic := cfg.Kafka.StatusScansTopicName
	if scansTopic == "" {
		scansTopic = messages.TopicStatusScans
	}
	eventTopic := cfg.Kafka.StatusChangedTopicName
	if eventTopic == "" {
		eventTopic = messages.TopicStatusChanged
	}
	trackTTL := config.Seconds(cfg.EuroLink.TrackTTLSeconds, 10*time.Minute)
	retryDelay := config.Seconds(cfg.EuroLink.EmailRetryDelaySeconds, time.Minute)

	app := &eurolinkAPIApp{log: log}

	var (
		store datastore
		ready []func(ctx context.Context) error
	)
	if connString := cfg.Database.ConnString(); connString != "" {
		st := mustOpenPostgresWithRetry(connString, 60*time.Second, log)
		app.closers = append(app.closers, func() error { st.Close(); return nil })
		ready = append(ready, st.Ping)
		store = st
	} else {
		log.Warnw("no database configured, using in-memory store")
		store = memstore.New()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewShipments(reg)

	var trackCache cache.BytesCache
	if addr := cfg.Redis.Addr(); addr != "" {
		rc := rediscache.New(addr)
		app.closers = append(app.closers, rc.Close)
		ready = append(ready, rc.Ping)
		trackCache = rc
	}

	mail := resendmail.New(resendmail.Config{
		Enabled:     cfg.Mailer.Enabled,
		APIKey:      cfg.Mailer.ResendAPIKey,
		FromAddress: cfg.Mailer.FromAddress,
		ReplyTo:     cfg.Mailer.ReplyTo,
	}, log)

	var accounts recipients.AccountEmails
	if c := supabaseacct.New(cfg.Supabase.URL, cfg.Supabase.ServiceKey); c != nil {
		accounts = c
	}

	deps := shipments.Deps{
		Store:      store,
		Mailer:     mail,
		Recipients: recipients.New(store, accounts),
		Outbox:     store,
		Cache:      trackCache,
		Metrics:    m,
		Log:        log,
	}
	if brokers := cfg.Kafka.Brokers(); len(brokers) > 0 {
		producer := kafka.NewProducer(brokers)
		consumer := kafka.NewConsumer(brokers, scansTopic, consumerGroup, log)
		app.closers = append(app.closers, producer.Close, consumer.Close)
		deps.Publisher = producer
		app.consumer = consumer
	}

	app.ships = shipments.New(deps, shipments.Config{
		Policy:     policy,
		TrackTTL:   trackTTL,
		RetryDelay: retryDelay,
		EventTopic: eventTopic,
	})
	app.notes = notifications.New(store, log)

	app.ctx, app.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app.opts = eurolinkAPIOpts{
		grpcAddr:      grpcAddr,
		httpAddr:      httpAddr,
		swaggerPath:   swaggerPath,
		jwtSecret:     cfg.Auth.JWTSecret,
		scansTopic:    scansTopic,
		consumerGroup: consumerGroup,
		gatherer:      reg,
		ready:         readiness(ready),
	}

	log.Infow("eurolink-api bootstrapped",
		"policy", policy,
		"postgres", cfg.Database.ConnString() != "",
		"redis", trackCache != nil,
		"kafka", app.consumer != nil,
		"mailer", mail.IsEnabled(),
		"supabase", accounts != nil,
	)
	return app
}

func readiness(checks []func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		var err error
		for _, check := range checks {
			err = multierr.Append(err, check(ctx))
		}
		return err
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration, log *logger.Logger) *pgshipment.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgshipment.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		log.Debugw("postgres not ready", "error", err)
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *eurolinkAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warnw("close", "error", err)
		}
	}
	_ = a.log.Sync()
}

func (a *eurolinkAPIApp) Run() error {
	return runEuroLinkAPI(a.ctx, a.opts, a.ships, a.notes, a.consumer, a.log)
}
