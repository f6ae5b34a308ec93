// Package router assembles the HTTP surface: the widget-facing chat API,
// the admin API, and operational endpoints.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/paintquotepro/quote-platform/internal/chat"
	httpmiddleware "github.com/paintquotepro/quote-platform/internal/http/middleware"
	"github.com/paintquotepro/quote-platform/internal/pricing"
	"github.com/paintquotepro/quote-platform/internal/quotes"
	"github.com/paintquotepro/quote-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	ChatHandler    *chat.Handler
	QuotesHandler  *quotes.Handler
	PricingHandler *pricing.Handler

	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Rate limiting for widget-facing endpoints. Zero disables it.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public operational endpoints.
	r.Get("/health", handleHealth)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Widget-facing endpoints, tenant-scoped and rate limited.
	r.Group(func(tenant chi.Router) {
		tenant.Use(httpmiddleware.RequireCompanyID)
		if cfg.RateLimitPerSecond > 0 {
			tenant.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}

		if cfg.ChatHandler != nil {
			tenant.Route("/chat", func(r chi.Router) {
				r.Post("/message", cfg.ChatHandler.HandleMessage)
				r.Post("/quick", cfg.ChatHandler.HandleQuickQuote)
				r.Post("/reset", cfg.ChatHandler.HandleReset)
				r.Get("/history", cfg.ChatHandler.HandleHistory)
				r.Get("/ws", cfg.ChatHandler.HandleWebSocket)
			})
		}

		if cfg.QuotesHandler != nil {
			tenant.Post("/quotes", cfg.QuotesHandler.CreateQuote)
		}
	})

	// Admin routes, protected by JWT.
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Route("/companies/{companyID}", func(company chi.Router) {
				if cfg.QuotesHandler != nil {
					company.Get("/quotes", cfg.QuotesHandler.ListQuotes)
					company.Get("/quotes/{quoteID}", cfg.QuotesHandler.GetQuote)
				}
				if cfg.PricingHandler != nil {
					company.Get("/pricing", cfg.PricingHandler.GetConfig)
					company.Put("/pricing", cfg.PricingHandler.UpdateConfig)
				}
			})
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
