package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/handler"
	"github.com/jengzang/visits-backend-go/internal/metrics"
	"github.com/jengzang/visits-backend-go/internal/middleware"
	"github.com/jengzang/visits-backend-go/internal/service"
)

// Deps 路由依赖
type Deps struct {
	VisitService *service.VisitService
	StatsService *service.StatsService
	Logger       *slog.Logger
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(metrics.Middleware())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedCredentials))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)))
	}
	r.Use(middleware.CacheControl(cfg.Cache.Enabled, cfg.Cache.TTL))

	system := handler.NewSystemHandler(cfg, deps.VisitService)
	visits := handler.NewVisitHandler(deps.VisitService)
	stats := handler.NewStatsHandler(deps.StatsService)

	// 健康检查
	r.GET("/", system.Root)
	r.GET("/health", system.Health)
	r.GET("/metrics", metrics.Handler())

	// API 路由组
	api := r.Group("/api")
	{
		api.GET("/config", system.GetConfig)
		api.GET("/structure", system.GetStructure)

		// 访问记录
		v := api.Group("/visits")
		{
			v.GET("", visits.GetVisits)
			v.GET("/stats", stats.GetStatistics)
			v.GET("/daily", stats.GetDailyCounts)
			v.GET("/:id", visits.GetVisitByID)
		}

		api.GET("/places", visits.GetPlaces)
		api.GET("/ingest/report", visits.GetLoadReport)
		api.POST("/reload", visits.Reload)
	}

	return r
}
