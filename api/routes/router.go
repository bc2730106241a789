package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sahyadri-motors/dealerdesk/api/controllers"
	bookingcontrollers "github.com/sahyadri-motors/dealerdesk/api/controllers/bookings"
	"github.com/sahyadri-motors/dealerdesk/api/middleware"
	"github.com/sahyadri-motors/dealerdesk/internal/auth"
	internalbookings "github.com/sahyadri-motors/dealerdesk/internal/bookings"
	"github.com/sahyadri-motors/dealerdesk/internal/catalog"
	"github.com/sahyadri-motors/dealerdesk/internal/documents"
	"github.com/sahyadri-motors/dealerdesk/internal/exchange"
	"github.com/sahyadri-motors/dealerdesk/pkg/auth/session"
	"github.com/sahyadri-motors/dealerdesk/pkg/config"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
	"github.com/sahyadri-motors/dealerdesk/pkg/logger"
	"github.com/sahyadri-motors/dealerdesk/pkg/metrics"
	"github.com/sahyadri-motors/dealerdesk/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams bundles everything NewRouter needs to assemble the HTTP tree.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	Readiness      map[string]controllers.Pinger
	Redis          *redis.Client
	SessionManager sessionManager
	AuthService    auth.Service
	CatalogService catalog.Service
	OTPService     exchange.Service
	BookingService internalbookings.Service
	ClaimUploader  documents.ClaimUploader
	StatusLookup   documents.StatusLookup
	Registry       *prometheus.Registry
	HTTPMetrics    *metrics.HTTPMetrics
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if p.HTTPMetrics != nil {
		r.Use(p.HTTPMetrics.Middleware())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
	})

	managerial := middleware.RequireAnyRole(logg,
		enums.RoleBranchManager.String(),
		enums.RoleAdmin.String(),
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/models", controllers.CatalogListModels(p.CatalogService, logg))
			r.Get("/models/{modelID}", controllers.CatalogGetModel(p.CatalogService, logg))
			r.Get("/models/{modelID}/prices", controllers.CatalogPriceSheet(p.CatalogService, logg))
			r.Get("/headers", controllers.CatalogListHeaders(p.CatalogService, logg))
			r.Get("/accessories", controllers.CatalogListAccessories(p.CatalogService, logg))
			r.Get("/brokers", controllers.CatalogListBrokers(p.CatalogService, logg))
			r.Get("/financers", controllers.CatalogListFinancers(p.CatalogService, logg))
		})

		r.Route("/brokers/{brokerID}", func(r chi.Router) {
			r.Post("/otp", controllers.BrokerIssueOTP(p.OTPService, logg))
			r.Post("/otp/verify", controllers.BrokerVerifyOTP(p.OTPService, logg))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookingcontrollers.Create(p.BookingService, logg))
			r.Get("/", bookingcontrollers.List(p.BookingService, logg))

			r.Route("/{bookingID}", func(r chi.Router) {
				r.Get("/", bookingcontrollers.Detail(p.BookingService, logg))
				r.Patch("/", bookingcontrollers.Update(p.BookingService, logg))

				r.With(managerial).Post("/approve", bookingcontrollers.Approve(p.BookingService, logg))
				r.With(managerial).Post("/reject", bookingcontrollers.Reject(p.BookingService, logg))
				r.With(managerial).Post("/complete", bookingcontrollers.Complete(p.BookingService, logg))
				r.Post("/cancel", bookingcontrollers.Cancel(p.BookingService, logg))
				r.With(managerial).Post("/chassis", bookingcontrollers.AllocateChassis(p.BookingService, logg))

				r.Post("/claim-documents", bookingcontrollers.ClaimDocuments(p.ClaimUploader, logg))
				r.Get("/documents", bookingcontrollers.DocumentStatuses(p.StatusLookup, logg))
			})
		})
	})

	return r
}
