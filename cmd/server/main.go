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

	"github.com/workforce-ai/roster-import/internal/api"
	"github.com/workforce-ai/roster-import/internal/config"
	"github.com/workforce-ai/roster-import/internal/db"
	"github.com/workforce-ai/roster-import/internal/repository"
)

func main() {
	// Initialize structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("starting roster-import service")

	// Load configuration
	cfg := config.Load()

	// Connect to database with retry
	ctx := context.Background()
	var dbPool = connectWithRetry(ctx, cfg, 30)
	defer dbPool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, dbPool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Expire old idempotency keys in the background
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go cleanIdempotencyKeys(cleanupCtx, repository.NewIdempotencyRepository(dbPool), cfg.Import.IdempotencyCleanupInterval)

	// Initialize router with all dependencies
	router := api.NewRouter(dbPool, cfg)

	if cfg.BatchUpload.Enabled() {
		slog.Info("batches will be posted to backend", "endpoint", cfg.BatchUpload.URL)
	} else {
		slog.Info("no batch upload endpoint configured; batches are stored in the learners table")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server listening",
			"port", cfg.Server.Port,
			"service", "roster-import",
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	stopCleanup()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server exited")
}

func connectWithRetry(ctx context.Context, cfg *config.Config, maxRetries int) *db.Pool {
	for i := 0; i < maxRetries; i++ {
		pool, err := db.Connect(ctx, cfg.Database)
		if err == nil {
			return pool
		}
		slog.Warn("database not ready, retrying...",
			"attempt", i+1,
			"max_retries", maxRetries,
			"error", err,
		)
		time.Sleep(2 * time.Second)
	}
	slog.Error("failed to connect to database after retries")
	os.Exit(1)
	return nil
}

type idempotencyCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}

func cleanIdempotencyKeys(ctx context.Context, repo idempotencyCleaner, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.CleanExpired(ctx)
			if err != nil {
				slog.Warn("idempotency key cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired idempotency keys removed", "count", n)
			}
		}
	}
}
