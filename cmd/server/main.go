package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"quizme-gateway/internal/analytics"
	"quizme-gateway/internal/config"
	"quizme-gateway/internal/health"
	"quizme-gateway/internal/opentdb"
	"quizme-gateway/internal/quiz"
	"quizme-gateway/internal/server"
	"quizme-gateway/pkg/cache"
	"quizme-gateway/pkg/database"
	"quizme-gateway/pkg/websocket"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Analytics store ---
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.DBDriver, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	repo := analytics.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to analytics store", "driver", cfg.DBDriver)

	checks := map[string]health.Checker{
		"database": health.CheckerFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}

	// --- Redis (optional category snapshot) ---
	var snapshot quiz.CategorySnapshot
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisCache(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Check(ctx); err != nil {
			logger.Warn("redis unreachable, category snapshot degraded", "addr", cfg.RedisAddr, "error", err)
		} else {
			logger.Info("connected to redis", "addr", cfg.RedisAddr)
		}
		snapshot = rdb
		checks["redis"] = rdb
	}

	// --- Upstream ---
	client := opentdb.NewClient(cfg.UpstreamBaseURL, &http.Client{Timeout: cfg.UpstreamTimeout})

	directory := quiz.NewDirectory(client, snapshot, logger)
	if err := directory.Load(ctx); err != nil {
		// The gateway still serves with whatever the directory holds.
		logger.Error("loading category directory", "error", err)
	}

	// --- Live feed and analytics ---
	hub := websocket.NewHub(logger)
	events := analytics.NewService(repo, hub, logger, analytics.Options{
		StoreTimeout:       cfg.StoreTimeout,
		PlatformMarker:     cfg.PlatformMarker,
		TopCategoriesLimit: cfg.TopCategoriesLimit,
		TopUserAgentsLimit: cfg.TopUserAgentsLimit,
	})

	router := server.NewRouter(server.Deps{
		Logger:      logger,
		Quiz:        quiz.NewHandler(quiz.NewService(client, directory, logger), directory, logger),
		Analytics:   events,
		Dashboard:   analytics.NewHandler(events, logger),
		LiveFeed:    hub.HandleWebSocket,
		Health:      health.NewHandler(logger, checks),
		CORSOrigins: cfg.CORSAllowedOrigins,
	})
	srv := server.New(cfg.HTTPAddr, logger, router)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	err = g.Wait()
	// Handlers have returned; let their events reach the store before it closes.
	events.Wait()
	return err
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == config.DriverPostgres {
		return database.NewPostgresDB(&database.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		})
	}
	return database.NewSQLiteDB(cfg.SQLitePath)
}
