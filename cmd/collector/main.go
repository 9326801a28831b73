// Command collector runs the collection pipeline on a cron schedule.
// It shares the wiring of cmd/api but never listens on HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/matchpulse/collector/internal/app"
	"github.com/matchpulse/collector/internal/config"
	"github.com/matchpulse/collector/internal/observability"
	"github.com/matchpulse/collector/internal/platform/logging"
	"github.com/matchpulse/collector/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() { _ = a.Close() }()

	scheduler := cron.New()
	entryID, err := scheduler.AddFunc(cfg.Schedule.CronSpec, func() {
		runCollection(ctx, a, cfg.Schedule, logger)
	})
	if err != nil {
		logger.Error("parse cron spec", "spec", cfg.Schedule.CronSpec, "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("collection scheduler started",
		"cron", cfg.Schedule.CronSpec,
		"next_run", scheduler.Entry(entryID).Next,
		"sources", a.SourceNames(),
	)

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(2 * time.Minute):
		logger.Warn("timed out waiting for running collection to finish")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stopPyroscope(); err != nil {
		logger.Error("stop pyroscope", "error", err)
	}
	if err := shutdownUptrace(shutdownCtx); err != nil {
		logger.Error("shutdown uptrace", "error", err)
	}

	logger.Info("collection scheduler stopped")
}

// runCollection executes one scheduled pass over every registered
// source. The date window slides with wall time so reruns pick up both
// recent corrections and upcoming fixtures.
func runCollection(ctx context.Context, a *app.App, schedule config.CollectionSchedule, logger *logging.Logger) {
	now := time.Now().UTC()
	input := usecase.MultiSourceInput{
		Competitions: schedule.Competitions,
		DateFrom:     now.AddDate(0, 0, -schedule.LookbackDays),
		DateTo:       now.AddDate(0, 0, schedule.WindowDays),
		MaxWorkers:   schedule.MaxWorkers,
	}

	result, err := a.CollectionService.CollectSources(ctx, input)
	if err != nil {
		logger.ErrorContext(ctx, "scheduled collection failed", "error", err)
		return
	}

	logger.InfoContext(ctx, "scheduled collection finished",
		"sources", result.SourceCount,
		"succeeded", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
		"date_from", input.DateFrom.Format("2006-01-02"),
		"date_to", input.DateTo.Format("2006-01-02"),
	)
}
