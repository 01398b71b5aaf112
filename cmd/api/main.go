package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse/internal/api"
	"pulse/internal/application/factories/infrastructure"
	"pulse/internal/cache"
	"pulse/internal/config"
	"pulse/internal/infrastructure/kafka"
	"pulse/internal/infrastructure/postgres"
	"pulse/internal/lookup"
	"pulse/internal/notify"
	"pulse/internal/replica"
)

func main() {
	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// Broker endpoints for the correlation RPC
	producer := kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers})
	defer producer.Close()

	responseReader := kafka.NewConsumer(cfg.Kafka.Brokers, lookup.ResponseTopics, cfg.Kafka.GroupID)
	defer responseReader.Close()

	collector := lookup.NewCollector(responseReader, cfg.Lookup.UnclaimedTTL, cfg.Lookup.SweepInterval)
	requester := lookup.NewRequester(producer)
	lookupClient := lookup.NewClient(requester, collector, cfg.Lookup.Timeout)

	// Notification pipeline
	store := cache.NewRedis(redisClient)
	bus := notify.NewRedisBus(redisClient)
	dispatcher := notify.NewDispatcher(store, lookupClient, bus, cfg.Notify.FollowersTTL, cfg.Notify.LikeTTL)

	// Identity replica
	userRepo := postgres.NewUserReferenceRepository(pgPool)
	replicaConsumer := replica.NewConsumer(redisClient, cfg.Notify.UserEventsChannel, userRepo)

	// Background tasks live for the process lifetime
	go func() {
		if err := collector.Run(ctx); err != nil {
			logger.Error("lookup collector stopped", "error", err)
		}
	}()
	go func() {
		if err := replicaConsumer.Run(ctx); err != nil {
			logger.Error("user event consumer stopped", "error", err)
		}
	}()

	handlers := api.NewHandlers(dispatcher, lookupClient, bus, userRepo, cfg.Notify.HeartbeatInterval)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: api.NewRouter(handlers),
	}

	go func() {
		logger.Info("Server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exiting")
}
