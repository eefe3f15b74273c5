package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"

	"symbol_backend/internal/app/config"
	"symbol_backend/internal/app/di"
	symbollistadapters "symbol_backend/internal/feature/symbollist/adapters"
	symbollistusecase "symbol_backend/internal/feature/symbollist/usecase"
	"symbol_backend/internal/platform/logger"
)

func main() {
	configDir := pflag.StringP("config", "c", "configs", "Directory holding config.yaml and .env")
	schedule := pflag.String("schedule", "", `Cron schedule to sync repeatedly (e.g. "0 8 * * 1-5"); empty runs once`)
	timeout := pflag.Duration("timeout", 30*time.Minute, "Time limit of one sync run")
	pflag.Parse()

	cfg, err := config.Load(*configDir, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if cfg.Database.Driver == "" {
		fmt.Fprintln(os.Stderr, "error: database.driver is not set")
		os.Exit(1)
	}

	log, closer := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Dir:        cfg.Log.Dir,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}, os.Stderr)
	defer func() { _ = closer.Close() }()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := di.NewPipeline(ctx, cfg, di.Options{Database: true}, log)
	if err != nil {
		log.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	repo := symbollistadapters.NewSymbolRepository(pipeline.DB)
	uc := symbollistusecase.NewSyncUsecase(pipeline.Registry, repo, log)

	runOnce := func() int {
		runCtx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		report := uc.SyncAll(runCtx)
		log.Info("ingest finished", "synced", len(report.Synced), "failed", len(report.Failed))
		return len(report.Failed)
	}

	if *schedule == "" {
		if failed := runOnce(); failed > 0 {
			os.Exit(1)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, func() { runOnce() }); err != nil {
		log.Error("invalid schedule", "schedule", *schedule, "error", err)
		os.Exit(2)
	}
	c.Start()
	log.Info("ingest scheduled", "schedule", *schedule)

	<-ctx.Done()
	// 実行中のジョブの完了を待つ
	<-c.Stop().Done()
	log.Info("ingest scheduler stopped")
}
