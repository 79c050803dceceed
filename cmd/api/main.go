package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchside/league/internal/app"
	"github.com/pitchside/league/internal/infra"
	"github.com/pitchside/league/internal/provider"
	"github.com/pitchside/league/internal/repository"
	"github.com/pitchside/league/internal/simulate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	var store repository.Store
	var pool *pgxpool.Pool
	if cfg.InMemory {
		store = repository.NewMemoryStore()
		logger.Info("running on in-memory store")
	} else {
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		pool, err = infra.NewPostgresPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		store = repository.NewPostgresStore(pool)
		logger.Info("connected to postgres")
	}

	// Outbox relay; a disabled producer makes this a no-op drain.
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	if cfg.KafkaEnabled {
		infra.NewOutboxPoller(store.Outbox(), producer, logger).Start(ctx)
	}

	seed := cfg.SimSeed
	if seed == 0 {
		seed, err = provider.NewRandomOrgSeeder(cfg.RandomOrgKey, logger).Seed(ctx)
		if err != nil {
			return fmt.Errorf("draw simulation seed: %w", err)
		}
	}

	params := simulate.DefaultParams()
	params.MaxDuration = cfg.SimMaxDuration
	params.HomeAdvantage = cfg.SimHomeAdvantage
	params.ProbabilityCap = cfg.SimProbabilityCap
	params.Blowout = simulate.BlowoutPolicy{
		Enabled:   cfg.SimBlowoutEnabled,
		MinMinute: cfg.SimBlowoutMinute,
		Gap:       cfg.SimBlowoutGap,
	}

	r := app.NewRouter(app.RouterDeps{
		Store:     store,
		Pool:      pool,
		SimParams: params,
		SimSeed:   seed,
		CORS:      cfg.CORSAllowedOrigins,
		Logger:    logger,
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr, "seed", seed)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
