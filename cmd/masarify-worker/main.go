package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"masarify/internal/config"
	"masarify/internal/events"
	applog "masarify/internal/log"
	"masarify/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger := applog.New(applog.Config{
		Format:    applog.Format(cfg.LogFormat),
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notification worker")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize events client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	notifier := worker.NewNotifier(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting notification worker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = client.ConsumeWithReconnect(ctx, notifier.HandleEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
