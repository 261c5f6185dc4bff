package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/jodolyekim/Dotori/config"
	"github.com/jodolyekim/Dotori/internal/api"
	"github.com/jodolyekim/Dotori/internal/api/handler"
	"github.com/jodolyekim/Dotori/internal/database"
	"github.com/jodolyekim/Dotori/internal/pkg/cron"
	"github.com/jodolyekim/Dotori/internal/pkg/idgen"
	"github.com/jodolyekim/Dotori/internal/pkg/logger"
	"github.com/jodolyekim/Dotori/internal/pkg/metrics"
	"github.com/jodolyekim/Dotori/internal/pkg/pubsub"
	"github.com/jodolyekim/Dotori/internal/pkg/ws"
	"github.com/jodolyekim/Dotori/internal/repository"
	"github.com/jodolyekim/Dotori/internal/service"
)

var configPath = flag.String("config", "config.yaml", "Path to config file")

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.Log, cfg.Server.Mode)
	defer logger.Sync()

	if err := idgen.Init(cfg.Server.NodeID); err != nil {
		log.Fatal("Failed to init id generator", zap.Error(err))
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 事件：Redis pub/sub 推送到 WebSocket
	wsHub := ws.NewHub()
	var publisher service.EventPublisher
	if cfg.Events.Enabled {
		rdb, err := database.NewRedis(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		log.Info("Redis connected")

		publisher = pubsub.NewPublisher(rdb, cfg.Events.Channel)
		subscriber := pubsub.NewSubscriber(rdb, cfg.Events.Channel)
		go func() {
			if err := subscriber.Subscribe(ctx, wsHub.Forward); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Event subscriber stopped", zap.Error(err))
			}
		}()
	}

	// 指标
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	clock := service.NewClock(cfg.Usage.Location(), time.Now)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	pointTxRepo := repository.NewPointTransactionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// 初始化 Service
	planService := service.NewPlanService(planRepo)
	if err := planService.EnsureSeeded(ctx); err != nil {
		log.Fatal("Failed to seed plans", zap.Error(err))
	}
	membershipService := service.NewMembershipService(membershipRepo, planService, clock)
	usageService := service.NewUsageService(db, usageRepo, walletRepo, membershipService, clock, publisher, m)
	pointService := service.NewPointService(db, usageRepo, walletRepo, pointTxRepo, membershipService, clock, publisher, m)
	subscribeService := service.NewSubscribeService(db, planService, membershipService, pointService,
		membershipRepo, paymentRepo, walletRepo, clock, publisher, m)
	authService := service.NewAuthService(userRepo, membershipService, cfg)
	adminService := service.NewAdminService(userRepo, membershipRepo, paymentRepo, usageRepo, pointService, clock)

	// 定时清理历史用量
	cronService := cron.NewService(usageService, cfg.Usage.RetentionDays, cfg.Usage.SweepSchedule, cfg.Usage.Location())
	if err := cronService.Start(); err != nil {
		log.Fatal("Failed to start cron", zap.Error(err))
	}
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewMembershipHandler(planService, membershipService, subscribeService),
		handler.NewPointHandler(pointService),
		handler.NewUsageHandler(usageService, cfg.Usage.HistoryDays),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret),
		handler.NewHealthHandler(db),
		handler.NewAdminHandler(adminService),
		usageService,
		adminService,
		m,
		log,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
