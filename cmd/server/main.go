// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/bussfix/internal/auth"
	"github.com/jason-s-yu/bussfix/internal/cache"
	"github.com/jason-s-yu/bussfix/internal/config"
	"github.com/jason-s-yu/bussfix/internal/database"
	"github.com/jason-s-yu/bussfix/internal/handlers"
	"github.com/jason-s-yu/bussfix/internal/room"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	signer, err := newSigner(cfg)
	if err != nil {
		logger.Fatalf("seat tokens: %v", err)
	}

	opts := room.Options{
		GracePeriod: cfg.GracePeriod,
		Tokens:      signer,
		Logger:      logger,
	}

	// Redis and Postgres are optional. Leave the interfaces nil when unset.
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		opts.History = cache.NewPublisher(rdb, cfg.HistorianQueue)
		logger.Infof("publishing game actions to %s/%s", cfg.RedisAddr, cfg.HistorianQueue)
	}
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Fatalf("database schema: %v", err)
		}
		opts.Results = database.NewStore(pool)
		logger.Info("recording game results to postgres")
	}

	reg := room.NewRegistry(opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(logger, reg, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
	// Hijacked websocket connections are not tracked by Shutdown; the
	// registry closes them.
	reg.Close()
	logger.Info("server stopped")
}

func newSigner(cfg config.Config) (*auth.Signer, error) {
	ttl, err := auth.ParseTokenExpireTime(cfg.TokenExpireTime)
	if err != nil {
		return nil, err
	}
	if cfg.SeatKeyPrivate != "" && cfg.SeatKeyPublic != "" {
		return auth.NewSignerFromPath(cfg.SeatKeyPrivate, cfg.SeatKeyPublic, ttl)
	}
	return auth.NewSigner(ttl, nil)
}
