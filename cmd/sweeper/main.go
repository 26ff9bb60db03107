// Command sweeper deletes click events older than the configured retention
// window and exits. Meant to be run from cron when the in-process sweeper is
// disabled.
package main

import (
	"Shortlink-Backend/internal/analytics"
	"Shortlink-Backend/internal/config"
	"Shortlink-Backend/internal/database"
	"Shortlink-Backend/internal/repository/postgres"
	"Shortlink-Backend/pkg/logger"
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	days := flag.Int("days", 0, "days of click history to keep, overrides retention.days_to_keep")
	flag.Parse()

	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log, *days); err != nil {
		log.Error("retention sweep failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, days int) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if days <= 0 {
		days = cfg.Retention.DaysToKeep
	}

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	deleted, err := analytics.NewSweeper(postgres.New(db, log), log).Sweep(ctx, days)
	if err != nil {
		return err
	}

	log.Info("retention sweep finished", zap.Int64("deleted", deleted), zap.Int("days_to_keep", days))
	return nil
}
