package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sahyadri-motors/dealerdesk/api/controllers"
	"github.com/sahyadri-motors/dealerdesk/api/routes"
	"github.com/sahyadri-motors/dealerdesk/internal/audit"
	"github.com/sahyadri-motors/dealerdesk/internal/auth"
	"github.com/sahyadri-motors/dealerdesk/internal/bookings"
	"github.com/sahyadri-motors/dealerdesk/internal/catalog"
	"github.com/sahyadri-motors/dealerdesk/internal/documents"
	"github.com/sahyadri-motors/dealerdesk/internal/exchange"
	"github.com/sahyadri-motors/dealerdesk/internal/users"
	"github.com/sahyadri-motors/dealerdesk/pkg/auth/session"
	"github.com/sahyadri-motors/dealerdesk/pkg/config"
	"github.com/sahyadri-motors/dealerdesk/pkg/db"
	"github.com/sahyadri-motors/dealerdesk/pkg/logger"
	"github.com/sahyadri-motors/dealerdesk/pkg/metrics"
	"github.com/sahyadri-motors/dealerdesk/pkg/migrate"
	"github.com/sahyadri-motors/dealerdesk/pkg/outbox"
	"github.com/sahyadri-motors/dealerdesk/pkg/redis"
	"github.com/sahyadri-motors/dealerdesk/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	bookingsRepo := bookings.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	otpService, err := exchange.NewService(exchange.ServiceParams{
		Catalog:    catalogRepo,
		Store:      redisClient,
		Logger:     logg,
		TTL:        cfg.OTP.TTL,
		ExposeCode: cfg.FeatureFlags.ExposeOTP || !cfg.App.IsProd(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create otp service", err)
		os.Exit(1)
	}

	entityRouter, err := bookings.NewRouter(catalogRepo, usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create entity router", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	renderer := documents.NewOutboxRenderer(outboxService, logg)
	statusLookup := documents.NewStoredStatusLookup(dbClient.DB())

	claimUploader, err := documents.NewClaimUploader(gcsClient, cfg.GCS.UploadURLExpiry)
	if err != nil {
		logg.Error(context.Background(), "failed to create claim uploader", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:     bookingsRepo,
		Catalog:  catalogRepo,
		Users:    usersRepo,
		Router:   entityRouter,
		OTP:      otpService,
		Tx:       dbClient,
		Outbox:   outboxService,
		Audit:    audit.NewRecorder(dbClient.DB(), logg),
		Renderer: renderer,
		Metrics:  bookingMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config: cfg,
			Logger: logg,
			Readiness: map[string]controllers.Pinger{
				"db":    dbClient,
				"redis": redisClient,
				"gcs":   gcsClient,
			},
			Redis:          redisClient,
			SessionManager: sessionManager,
			AuthService:    authService,
			CatalogService: catalogService,
			OTPService:     otpService,
			BookingService: bookingService,
			ClaimUploader:  claimUploader,
			StatusLookup:   statusLookup,
			Registry:       registry,
			HTTPMetrics:    httpMetrics,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
