package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/EuroLink/config"
	"github.com/BearBump/EuroLink/internal/logger"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.L.Debugw(".env file not found, relying on environment")
	}

	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("config parse error: %v", err))
	}
	log, err := logger.New(cfg.EuroLink.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("logger init: %v", err))
	}
	logger.L = log
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	w, closeFn, err := newWorker(cfg, defaultWorkerFactories(), reg, log)
	if err != nil {
		panic(err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, workerHTTPOpts{
			httpAddr:    cfg.EuroLink.WorkerHTTPAddr,
			swaggerPath: os.Getenv("swaggerPath"),
			worker:      w,
			gatherer:    reg,
		})
	}()
	go func() {
		if err := <-httpErr; err != nil && ctx.Err() == nil {
			log.Errorw("worker http server stopped", "error", err)
		}
	}()

	log.Infow("mail-worker started", "settings", w.Settings())
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
