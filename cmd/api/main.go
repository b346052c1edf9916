package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mfigueroa/openshelf-backend/api/routes"
	"github.com/mfigueroa/openshelf-backend/internal/auth"
	"github.com/mfigueroa/openshelf-backend/internal/availability"
	"github.com/mfigueroa/openshelf-backend/internal/catalog"
	"github.com/mfigueroa/openshelf-backend/internal/feedback"
	"github.com/mfigueroa/openshelf-backend/internal/integrations"
	"github.com/mfigueroa/openshelf-backend/internal/profiles"
	"github.com/mfigueroa/openshelf-backend/internal/reports"
	"github.com/mfigueroa/openshelf-backend/pkg/auth/session"
	"github.com/mfigueroa/openshelf-backend/pkg/config"
	"github.com/mfigueroa/openshelf-backend/pkg/db"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
	"github.com/mfigueroa/openshelf-backend/pkg/migrate"
	"github.com/mfigueroa/openshelf-backend/pkg/outbox"
	"github.com/mfigueroa/openshelf-backend/pkg/redis"
	"github.com/mfigueroa/openshelf-backend/pkg/storage/gcs"
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

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	profileRepo := profiles.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		ProfileRepo:    profileRepo,
		SessionManager: sessionManager,
		TokenStore:     redisClient,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		ProfileRepo:    profileRepo,
		TxRunner:       dbClient,
		TokenStore:     redisClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:      catalog.NewRepository(dbClient.DB()),
		TxRunner:  dbClient,
		Outbox:    outboxService,
		GCS:       gcsClient,
		Logger:    logg,
		Bucket:    cfg.GCS.BucketName,
		UploadTTL: cfg.GCS.UploadURLExpiry,
		ViewTTL:   cfg.GCS.DownloadURLExpiry,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	availabilityService, err := availability.NewService(availability.ServiceParams{
		Repo:        availability.NewRepository(dbClient.DB()),
		TxRunner:    dbClient,
		Outbox:      outboxService,
		Circulation: cfg.Circulation,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}

	profilesService, err := profiles.NewService(profiles.ServiceParams{
		Repo:     profileRepo,
		TxRunner: dbClient,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create profiles service", err)
		os.Exit(1)
	}

	feedbackService, err := feedback.NewService(feedback.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create feedback service", err)
		os.Exit(1)
	}

	integrationsService, err := integrations.NewService(integrations.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create integrations service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(reports.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gcsClient, sessionManager, routes.Services{
			Auth:         authService,
			Register:     registerService,
			Catalog:      catalogService,
			Availability: availabilityService,
			Profiles:     profilesService,
			Feedback:     feedbackService,
			Integrations: integrationsService,
			Reports:      reportsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
