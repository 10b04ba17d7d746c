package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"text-adventure/internal/cli"
	"text-adventure/internal/config"
	"text-adventure/internal/database"
	"text-adventure/internal/repository"
	"text-adventure/internal/service"
	"text-adventure/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dbConnectAttempts = 10
	dbRetryDelay      = 3 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "text-adventure: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutputPath,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("Configuration loaded", cfg.LogFields()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("Metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	aiClient, err := service.NewAIClient(cfg, log)
	if err != nil {
		log.Error("Failed to create AI client", zap.Error(err))
		return err
	}
	narrator := service.NewNarrator(aiClient, cfg, log)

	repo, closeRepo, err := setupRepository(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to set up save storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
		return err
	}
	defer closeRepo()

	game := service.NewGameService(narrator, service.NewStateUpdater(log), repo,
		service.GameOptions{GenerateClasses: cfg.GenerateClasses, ClassAttempts: cfg.AIMaxAttempts}, log)

	// A blocking stdin read cannot be interrupted, so the session runs in its own goroutine and a signal just ends the process
	done := make(chan error, 1)
	go func() {
		done <- cli.NewGame(game, cli.NewStdConsole(), log).Run(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("Game interrupted")
		fmt.Fprintln(os.Stdout)
		return nil
	case err = <-done:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Game ended with error", zap.Error(err))
		return err
	}
	return nil
}

// setupRepository opens the configured save backend. The returned func releases its connections.
func setupRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.PlayerStateRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
		return repository.NewRedisRepository(client, cfg.RedisKeyPrefix, log), func() { client.Close() }, nil

	case config.StoragePostgres:
		dsn := cfg.GetDSN()
		pool, err := database.Connect(ctx, database.PoolConfig{
			DSN:         dsn,
			MaxConns:    cfg.DBMaxConns,
			IdleTimeout: cfg.DBIdleTimeout,
			MaxAttempts: dbConnectAttempts,
			RetryDelay:  dbRetryDelay,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		if err := database.ApplyMigrations(dsn, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("Connected to PostgreSQL")
		return repository.NewPostgresRepository(pool, log), pool.Close, nil

	default:
		repo, err := repository.NewFileRepository(cfg.SaveDir, log)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}

func startMetricsServer(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("Starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
