package shipments_api

import (
	"net/http"
	"time"

	"github.com/BearBump/EuroLink/internal/logger"
	"github.com/BearBump/EuroLink/internal/services/notifications"
	"github.com/BearBump/EuroLink/internal/services/shipments"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShipmentsAPI serves the /v1 HTTP surface over the shipment and
// notification services.
type ShipmentsAPI struct {
	shipments     *shipments.Service
	notifications *notifications.Service
	jwtSecret     string
	log           *logger.Logger
}

type Option func(*ShipmentsAPI)

// WithJWTSecret switches request identity from the X-Actor-ID header to
// HS256 bearer tokens signed with secret.
func WithJWTSecret(secret string) Option {
	return func(a *ShipmentsAPI) { a.jwtSecret = secret }
}

func WithLogger(log *logger.Logger) Option {
	return func(a *ShipmentsAPI) {
		if log != nil {
			a.log = log
		}
	}
}

func New(ships *shipments.Service, notes *notifications.Service, opts ...Option) *ShipmentsAPI {
	a := &ShipmentsAPI{
		shipments:     ships,
		notifications: notes,
		log:           logger.NewNop(),
	}
	for _, o := range opts {
		o(a)
	}
	a.log = a.log.Named("http")
	return a
}

// Routes returns the /v1 router.
func (a *ShipmentsAPI) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLog)
	r.Use(a.identity)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/shipments", a.createShipment)
		r.Route("/shipments/{id}", func(r chi.Router) {
			r.Get("/", a.getShipment)
			r.Delete("/", a.deleteShipment)
			r.Get("/history", a.listHistory)
			r.Post("/status", a.updateStatus)
			r.Post("/driver", a.assignDriver)
		})
		r.Get("/track/{trackingNumber}", a.track)

		r.Get("/statuses", a.listStatuses)
		r.Get("/statuses/{status}/next", a.nextStatuses)

		r.Route("/users/{userID}/notifications", func(r chi.Router) {
			r.Get("/", a.listNotifications)
			r.Post("/", a.sendAdminMessage)
			r.Post("/read", a.markAllRead)
			r.Post("/{id}/read", a.markRead)
		})
	})
	return r
}

func (a *ShipmentsAPI) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
