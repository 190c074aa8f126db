package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"masarify/internal/analytics"
	"masarify/internal/auth"
	"masarify/internal/config"
	"masarify/internal/events"
	apphttp "masarify/internal/http"
	applog "masarify/internal/log"
	"masarify/internal/prefs"
	"masarify/internal/query"
	"masarify/internal/services"
	"masarify/internal/store"
	"masarify/internal/store/memory"
	"masarify/internal/store/rest"
)

func main() {
	// .env is for local development; in production the environment is
	// already set.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger := applog.New(applog.Config{
		Level:     parseLevel(cfg.LogLevel),
		Format:    applog.Format(cfg.LogFormat),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	holder := auth.NewHolder()

	var authClient *auth.Client
	if cfg.AuthURL != "" {
		authClient = auth.NewClient(cfg.AuthURL, cfg.AuthAPIKey, holder)
		logger.Info("Auth provider configured", "url", cfg.AuthURL)
	} else {
		logger.Info("Auth provider disabled - no AUTH_URL provided")
	}

	var backend interface {
		store.RecordStore
		store.ProfileStore
	}
	switch cfg.DataBackend {
	case "rest":
		backend = rest.New(cfg.StoreURL, cfg.StoreAPIKey, func() string {
			if s := holder.Current(); s != nil {
				return s.AccessToken
			}
			return ""
		})
		logger.Info("Initialized hosted record store", "backend", cfg.DataBackend, "url", cfg.StoreURL)
	default:
		backend = memory.New()
		logger.Info("Initialized in-memory record store", "backend", cfg.DataBackend)
	}

	local, err := prefs.Open(cfg.PrefsDBPath)
	if err != nil {
		logger.Error("Failed to open preferences store", "error", err, "path", cfg.PrefsDBPath)
		os.Exit(1)
	}
	defer local.Close()
	prefsService := prefs.NewService(local, backend, holder, logger.WithComponent(applog.ComponentPrefs).Logger)

	var tracker *analytics.Tracker
	if cfg.GeminiAPIKey != "" {
		analyzer, err := analytics.NewGeminiAnalyzer(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize AI analyzer", "error", err)
			os.Exit(1)
		}
		tracker = analytics.NewTracker(analyzer)
		logger.Info("AI analytics configured", "model", cfg.GeminiModel)
	} else {
		logger.Info("AI analytics disabled - no GEMINI_API_KEY provided")
	}

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize events client", "error", err)
			os.Exit(1)
		}
		publisher = client
		logger.Info("Event publishing configured", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Event publishing disabled - no AMQP_URL provided")
	}

	queries := query.NewClient(backend, holder, logger.WithComponent(applog.ComponentCache).Logger, query.Options{
		TTL:     cfg.CacheTTL,
		MaxSize: cfg.CacheMaxSize,
	})

	recordService := services.NewRecordService(backend, queries, publisher, holder)
	defer recordService.Close()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:       ":" + cfg.Port,
		Records:    recordService,
		Tracker:    tracker,
		Prefs:      prefsService,
		AuthClient: authClient,
		Session:    holder,
		Logger:     logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Periodic cache janitor.
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if cleaned := queries.CleanExpired(); cleaned > 0 {
					logger.Debug("Cache cleanup completed", applog.FieldCacheSize, queries.Size(), "entries_removed", cleaned)
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
