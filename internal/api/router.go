// Package api is the local HTTP boundary between the browser extension and
// the decision engine.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/web_gate/internal/api/handlers"
	"github.com/eliteGoblin/focusd/web_gate/internal/api/middleware"
	"github.com/eliteGoblin/focusd/web_gate/internal/domain"
)

// RouterConfig holds dependencies for the API router
type RouterConfig struct {
	Engine     domain.Engine
	Progress   handlers.ProgressManager
	Rules      handlers.RuleLister
	Heartbeats domain.HeartbeatRegistry
	Clock      domain.Clock
	APIToken   string
	Version    string
	Logger     *zap.Logger
}

// NewRouter creates and configures the Gin router
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))

	// Health check (no auth)
	healthHandler := handlers.NewHealthHandler(config.Version)
	router.GET("/health", healthHandler.GetHealth)

	v1 := router.Group("/v1")
	v1.Use(middleware.BearerAuth(config.APIToken))
	{
		checkHandler := handlers.NewCheckHandler(config.Engine, logger)
		v1.POST("/check", checkHandler.Check)
		v1.POST("/check/media", checkHandler.CheckMedia)
		v1.POST("/mentions", checkHandler.RecordMention)

		heartbeatHandler := handlers.NewHeartbeatHandler(config.Heartbeats, config.Clock, logger)
		v1.POST("/heartbeat", heartbeatHandler.Beat)

		progressHandler := handlers.NewProgressHandler(config.Progress, logger)
		v1.GET("/progress", progressHandler.GetProgress)
		v1.PUT("/progress", progressHandler.SetProgress)
		v1.POST("/progress/add", progressHandler.AddProgress)

		rulesHandler := handlers.NewRulesHandler(config.Rules, logger)
		v1.GET("/rules", rulesHandler.ListRules)
	}

	return router
}
