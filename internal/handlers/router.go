package handlers

import (
	"github.com/SAP-F-2025/scoring-service/internal/services"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type HandlerManager struct {
	scoreHandler   *ScoreHandler
	sessionHandler *SessionHandler
}

func NewHandlerManager(scoringService services.ScoringService, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		scoreHandler:   NewScoreHandler(scoringService, logger),
		sessionHandler: NewSessionHandler(scoringService, logger),
	}
}

// RouterConfig carries the middleware settings.
type RouterConfig struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies may set the client IP through X-Forwarded-For. With
	// none, the client IP is the connection's remote address.
	TrustedProxies []string
	// RateLimitRedis, when set, shares the rate limit across instances.
	RateLimitRedis *redis.Client
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(hm *HandlerManager, logger utils.Logger, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn("Invalid trusted proxies, trusting none", "proxies", cfg.TrustedProxies, "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		gin.Recovery(),
		RequestID(),
		utils.LoggerMiddleware(logger),
		utils.ContextLogger(logger),
		CORS(cfg.CORSOrigins),
	)
	if cfg.RateLimitRPS > 0 {
		limiter := NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).
			WithRedis(cfg.RateLimitRedis, func(err error) {
				logger.Warn("Redis rate limiter unavailable, using local limit", "error", err)
			})
		router.Use(limiter.Middleware())
	}

	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		scores := v1.Group("/scores")
		{
			scores.POST("", hm.scoreHandler.ComputeScores)
			scores.POST("/question-stats", hm.scoreHandler.QuestionStats)
			scores.POST("/export", hm.scoreHandler.ExportExcel)
			scores.GET("/runs", hm.scoreHandler.ListRuns)
			scores.GET("/runs/:id", hm.scoreHandler.GetRun)
		}

		v1.GET("/presets", hm.scoreHandler.ListPresets)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.PATCH("/:id", hm.sessionHandler.UpdateSession)
			sessions.POST("/:id/students", hm.sessionHandler.AddStudent)
			sessions.POST("/:id/score", hm.sessionHandler.ScoreSession)
		}
	}
}
