package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jodolyekim/Dotori/config"
	"github.com/jodolyekim/Dotori/internal/api/handler"
	"github.com/jodolyekim/Dotori/internal/api/middleware"
	"github.com/jodolyekim/Dotori/internal/pkg/metrics"
)

type Router struct {
	authHandler       *handler.AuthHandler
	membershipHandler *handler.MembershipHandler
	pointHandler      *handler.PointHandler
	usageHandler      *handler.UsageHandler
	websocketHandler  *handler.WebSocketHandler
	healthHandler     *handler.HealthHandler
	adminHandler      *handler.AdminHandler
	usageConsumer     middleware.UsageConsumer
	adminChecker      middleware.AdminChecker
	metrics           *metrics.Metrics
	logger            *zap.Logger
	cfg               *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	membershipHandler *handler.MembershipHandler,
	pointHandler *handler.PointHandler,
	usageHandler *handler.UsageHandler,
	websocketHandler *handler.WebSocketHandler,
	healthHandler *handler.HealthHandler,
	adminHandler *handler.AdminHandler,
	usageConsumer middleware.UsageConsumer,
	adminChecker middleware.AdminChecker,
	m *metrics.Metrics,
	logger *zap.Logger,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:       authHandler,
		membershipHandler: membershipHandler,
		pointHandler:      pointHandler,
		usageHandler:      usageHandler,
		websocketHandler:  websocketHandler,
		healthHandler:     healthHandler,
		adminHandler:      adminHandler,
		usageConsumer:     usageConsumer,
		adminChecker:      adminChecker,
		metrics:           m,
		logger:            logger,
		cfg:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(r.logger))
	engine.Use(middleware.Metrics(r.metrics))
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/healthz", r.healthHandler.Healthz)
	if r.metrics != nil {
		engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 需要认证的接口
		memberships := api.Group("/memberships")
		memberships.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			memberships.GET("/plans", r.membershipHandler.Plans)
			memberships.GET("/me", r.membershipHandler.Me)
			memberships.POST("/subscribe", r.membershipHandler.Subscribe)
			memberships.GET("/payments", r.membershipHandler.Payments)

			// 积分
			memberships.GET("/points", r.pointHandler.Wallet)
			memberships.GET("/points/history", r.pointHandler.History)
			memberships.POST("/points/earn/quiz", r.pointHandler.EarnQuiz)
			memberships.POST("/points/earn/roleplay", r.pointHandler.EarnRoleplay)

			// 用量
			memberships.GET("/stats/overview", r.usageHandler.Overview)
			memberships.GET("/usage/:feature", r.usageHandler.Check)
			memberships.POST("/consume/:feature",
				middleware.ConsumeFeature(r.usageConsumer, middleware.FeatureFromParam("feature")),
				r.usageHandler.Consumed,
			)
		}

		// 运营接口
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.RequireAdmin(r.adminChecker))
		{
			admin.GET("/analytics", r.adminHandler.Analytics)
			admin.POST("/points/adjust", r.adminHandler.AdjustPoints)
		}
	}

	return engine
}
