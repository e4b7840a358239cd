package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/infra/http/handlers"
	"github.com/xavierca1/outreach-dashboard/internal/infra/http/middleware"
)

type RouterDeps struct {
	Leads         *handlers.LeadHandler
	Webhooks      *handlers.WebhookHandler
	Health        *handlers.HealthHandler
	RateLimiter   *middleware.RateLimiter
	WebhookSecret string
	CORSOrigins   []string
	Log           *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.WebhookSecretHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		r.Route("/instagram-leads", d.Leads.Routes)

		r.Route("/webhook", func(r chi.Router) {
			if d.RateLimiter != nil {
				r.Use(d.RateLimiter.Middleware)
			}
			r.Use(middleware.WebhookSecret(d.WebhookSecret))
			r.Post("/instagram-agent", d.Webhooks.HandleInstagramAgent)
			r.Post("/phantombuster", d.Webhooks.HandlePhantomBuster)
		})
	})

	return r
}

// New wraps the router in an http.Server with the configured timeouts.
func New(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}
