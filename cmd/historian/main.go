// cmd/historian drains the game action queue into Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/bussfix/internal/cache"
	"github.com/jason-s-yu/bussfix/internal/config"
	"github.com/jason-s-yu/bussfix/internal/database"
	"github.com/jason-s-yu/bussfix/internal/dependencies/clock"
	"github.com/jason-s-yu/bussfix/internal/historian"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		logger.Fatal("historian requires REDIS_ADDR and DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("database schema: %v", err)
	}

	hs := historian.New(rdb, database.NewStore(pool), historian.Config{
		Queue:      cfg.HistorianQueue,
		BatchSize:  cfg.HistorianBatchSize,
		FlushDelay: cfg.HistorianFlush,
		Inactivity: cfg.GameInactivity,
	}, clock.New(), logger.WithField("service", "historian"))
	hs.Run(ctx)
}
