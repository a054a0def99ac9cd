package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tixflow/listing-service/internal/config"
	"github.com/tixflow/listing-service/internal/metrics"
	"github.com/tixflow/listing-service/internal/transport/http/handlers"
	"github.com/tixflow/listing-service/internal/transport/http/middleware"
)

const ServiceName = "listing-service"

type Handlers struct {
	Wizard  *handlers.WizardHandler
	Payment *handlers.PaymentHandler
	Upload  *handlers.UploadHandler
	Catalog *handlers.CatalogHandler
	Auth    *handlers.AuthHandler
	Health  *handlers.HealthHandler
}

func New(h Handlers, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.OTELEnabled {
		r.Use(middleware.Tracing(ServiceName))
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.AccessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.HeaderXRequestID, middleware.HeaderXSessionID},
		ExposedHeaders:   []string{middleware.HeaderXRequestID, middleware.HeaderXSessionID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.RLEnabled {
		r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
	}

	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.MetricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(middleware.SessionOptions{
			Secure: cfg.AppEnv != "dev",
			MaxAge: cfg.DraftTTL,
		}))
		r.Use(middleware.Bearer)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/register", h.Auth.Register)
			r.Post("/logout", h.Auth.Logout)
			r.With(middleware.RequireBearer).Get("/me", h.Auth.Me)
		})

		r.Get("/events", h.Catalog.ListEvents)
		r.Get("/events/{id}", h.Catalog.GetEvent)
		r.Route("/tickets", func(r chi.Router) {
			r.Get("/{id}", h.Catalog.GetTicket)
			r.Get("/event/{id}", h.Catalog.ListTicketsByEvent)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireBearer)
				r.Put("/{id}", h.Catalog.UpdateTicket)
				r.Patch("/{id}/status/{status}", h.Catalog.UpdateTicketStatus)
				r.Post("/{id}/orders", h.Catalog.BuyTicket)
			})
		})

		r.Route("/self", func(r chi.Router) {
			r.Use(middleware.RequireBearer)
			r.Get("/selling-tickets", h.Catalog.ListSellingTickets)
			r.Get("/buying-tickets", h.Catalog.ListBuyingTickets)
		})

		r.Route("/wizard", func(r chi.Router) {
			r.Get("/", h.Wizard.Resume)
			r.Put("/event-draft", h.Wizard.EditEventDraft)
			r.Put("/ticket-draft", h.Wizard.EditTicketDraft)
			r.Post("/event/select", h.Wizard.SelectEvent)
			r.Post("/back", h.Wizard.Back)
			r.Get("/payment/stream", h.Payment.Stream)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireBearer)
				r.Post("/event", h.Wizard.CreateEvent)
				r.Post("/ticket", h.Wizard.CreateTicket)
				r.Post("/payment", h.Wizard.RequestPayment)
			})
		})

		r.Post("/payment/messages", h.Payment.Relay)
		r.With(middleware.RequireBearer).Post("/uploads", h.Upload.Upload)
	})

	return r
}
