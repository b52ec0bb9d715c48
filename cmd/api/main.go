package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/yanchenliu/moodlog-backend/api/routes"
	"github.com/yanchenliu/moodlog-backend/internal/auth"
	"github.com/yanchenliu/moodlog-backend/internal/profiles"
	"github.com/yanchenliu/moodlog-backend/internal/records"
	"github.com/yanchenliu/moodlog-backend/internal/seeder"
	"github.com/yanchenliu/moodlog-backend/internal/users"
	"github.com/yanchenliu/moodlog-backend/pkg/auth/session"
	"github.com/yanchenliu/moodlog-backend/pkg/config"
	"github.com/yanchenliu/moodlog-backend/pkg/db"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
	"github.com/yanchenliu/moodlog-backend/pkg/migrate"
	"github.com/yanchenliu/moodlog-backend/pkg/pubsub"
	"github.com/yanchenliu/moodlog-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	// The seed event publisher is optional: without a GCP project the first
	// profile save simply does not fan out, and sample data is only
	// provisioned through the direct RPC.
	var seedNotifier profiles.SeedNotifier
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()

		seedNotifier, err = seeder.NewPublisher(pubsubClient.SeedPublisher())
		if err != nil {
			logg.Error(context.Background(), "failed to create seed publisher", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "no gcp project configured, seed events disabled")
	}

	profileService, err := profiles.NewService(profiles.ServiceParams{
		Repo:         profiles.NewRepository(dbClient.DB()),
		SeedNotifier: seedNotifier,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	recordsRepo := records.NewRepository(dbClient.DB())
	recordsService, err := records.NewService(records.ServiceParams{Repo: recordsRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create records service", err)
		os.Exit(1)
	}

	seederService, err := seeder.NewService(seeder.ServiceParams{
		Records:  recordsRepo,
		Guard:    redisClient,
		GuardTTL: cfg.Seed.GuardTTL,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create seeder service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, sessionManager, authService, profileService, recordsService, seederService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
