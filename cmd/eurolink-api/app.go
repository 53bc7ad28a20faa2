package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	shipmentsapi "github.com/BearBump/EuroLink/internal/api/shipments_api"
	"github.com/BearBump/EuroLink/internal/logger"
	"github.com/BearBump/EuroLink/internal/services/notifications"
	"github.com/BearBump/EuroLink/internal/services/shipments"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type eurolinkAPIOpts struct {
	grpcAddr    string
	httpAddr    string
	swaggerPath string
	jwtSecret   string

	scansTopic    string
	consumerGroup string

	gatherer prometheus.Gatherer
	ready    func(ctx context.Context) error

	onListen func(grpcAddr, httpAddr string)
}

type scanConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

func runEuroLinkAPI(ctx context.Context, opts eurolinkAPIOpts, ships *shipments.Service, notes *notifications.Service, consumer scanConsumer, log *logger.Logger) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}
	if log == nil {
		log = logger.NewNop()
	}

	api := shipmentsapi.New(ships, notes,
		shipmentsapi.WithJWTSecret(opts.jwtSecret),
		shipmentsapi.WithLogger(log),
	)

	grpcLis, err := net.Listen("tcp", opts.grpcAddr)
	if err != nil {
		return err
	}
	httpLis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		_ = grpcLis.Close()
		return err
	}

	if opts.onListen != nil {
		opts.onListen(grpcLis.Addr().String(), httpLis.Addr().String())
	}

	grpcErr := make(chan error, 1)
	go func() {
		grpcErr <- runGRPCServer(ctx, grpcLis, log)
	}()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runHTTPServer(ctx, httpLis, newRouter(api, opts), log)
	}()

	consumerErr := make(chan error, 1)
	if consumer != nil {
		go func() {
			log.Infow("kafka consumer started", "topic", opts.scansTopic, "group", opts.consumerGroup)
			err := consumer.Consume(ctx, func(_key, value []byte) error {
				return ships.HandleStatusScan(ctx, value)
			})
			if err != nil && ctx.Err() == nil {
				consumerErr <- errors.Wrap(err, "status scan consumer")
			}
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-grpcErr:
		return err
	case err := <-httpErr:
		return err
	case err := <-consumerErr:
		return err
	}
}

// runGRPCServer serves the standard gRPC health service.
func runGRPCServer(ctx context.Context, lis net.Listener, log *logger.Logger) error {
	s := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	go func() {
		<-ctx.Done()
		hs.Shutdown()
		stopped := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			s.Stop()
		}
		_ = lis.Close()
	}()

	log.Infow("gRPC server listening", "addr", lis.Addr().String())
	return s.Serve(lis)
}

func newRouter(api *shipmentsapi.ShipmentsAPI, opts eurolinkAPIOpts) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.ready != nil {
			if err := opts.ready(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"not ready"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	gatherer := opts.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, opts.swaggerPath)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger.json"),
	))

	r.Mount("/", api.Routes())
	return r
}

func runHTTPServer(ctx context.Context, lis net.Listener, h http.Handler, log *logger.Logger) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infow("HTTP server listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}
