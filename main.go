package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"looplane/internal/config"
	"looplane/internal/database"
	"looplane/internal/logging"
	"looplane/internal/server"
	"looplane/internal/services"
	"looplane/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	var db *gorm.DB
	if cfg.UsesDatabase() {
		var err error
		if db, err = database.Open(ctx, cfg, logger); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer database.Close(db)
	} else {
		logger.Warn("DB_DRIVER=memory, data is lost on restart")
	}

	// --- Redis (optional) ---
	cache, err := openRedis(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if cache != nil {
		defer cache.Close()
		logger.Info("idempotent replay enabled", slog.Duration("ttl", cfg.IdempotencyTTL))
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeListingEvents(rabbitmq.LogListingEvent(logger)); err != nil {
			logger.Error("failed to start listing event consumer", slog.Any("error", err))
		}
	} else {
		logger.Info("RABBITMQ_URL not set, listing events disabled")
	}

	// --- HTTP ---
	srv := server.New(cfg, server.Deps{
		DB:        db,
		Cache:     cache,
		Publisher: publisher,
		Logger:    logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", cfg.AppPort), slog.String("env", cfg.AppEnv))
		errCh <- srv.Listen()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}

// openRedis returns nil when no URL is configured.
func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
