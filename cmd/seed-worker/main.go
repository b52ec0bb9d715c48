package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanchenliu/moodlog-backend/internal/records"
	"github.com/yanchenliu/moodlog-backend/internal/seeder"
	"github.com/yanchenliu/moodlog-backend/pkg/config"
	"github.com/yanchenliu/moodlog-backend/pkg/db"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
	"github.com/yanchenliu/moodlog-backend/pkg/metrics"
	"github.com/yanchenliu/moodlog-backend/pkg/pubsub"
	"github.com/yanchenliu/moodlog-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	seederService, err := seeder.NewService(seeder.ServiceParams{
		Records:  records.NewRepository(dbClient.DB()),
		Guard:    redisClient,
		GuardTTL: cfg.Seed.GuardTTL,
		Logger:   logg,
	})
	requireResource(ctx, logg, "seeder service", err)

	metricsCollector := metrics.NewSeedConsumerMetrics(prometheus.DefaultRegisterer)
	consumer, err := seeder.NewConsumer(seederService, logg, metricsCollector)
	requireResource(ctx, logg, "seed consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env})
	logg.Info(runCtx, "seed worker ready")

	if err := consumer.Run(runCtx, pubsubClient.SeedSubscription()); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "seed worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
