package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jodolyekim/Dotori/config"
	"github.com/jodolyekim/Dotori/internal/database"
	"github.com/jodolyekim/Dotori/internal/pkg/cron"
	"github.com/jodolyekim/Dotori/internal/pkg/logger"
	"github.com/jodolyekim/Dotori/internal/repository"
	"github.com/jodolyekim/Dotori/internal/service"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to config file")
	dryRun     = flag.Bool("dry-run", true, "Only count rows that would be deleted")
	retention  = flag.Int("retention-days", 0, "Override usage.retention_days from config")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.Log, cfg.Server.Mode)
	defer logger.Sync()

	days := cfg.Usage.RetentionDays
	if *retention > 0 {
		days = *retention
	}
	if days <= 0 {
		log.Info("Retention disabled, nothing to do")
		return
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect database", zap.Error(err))
	}

	clock := service.NewClock(cfg.Usage.Location(), time.Now)
	usageService := service.NewUsageService(db, repository.NewUsageRepository(db), nil, nil, clock, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	rows, err := cron.NewService(usageService, days, "", cfg.Usage.Location()).RunNow(ctx, *dryRun)
	if err != nil {
		log.Fatal("Cleanup failed", zap.Error(err))
	}

	if *dryRun {
		log.Info("DRY RUN: usage counters that would be deleted",
			zap.Int64("rows", rows),
			zap.String("before", clock.DaysAgo(days)),
		)
		return
	}
	log.Info("Usage counters deleted", zap.Int64("rows", rows), zap.String("before", clock.DaysAgo(days)))
}
