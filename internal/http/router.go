package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/airspace/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(accessLogger(cfg.LogOutput))
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())

	health := NewHealthController(cfg.HealthChecks, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	pipelineController := NewPipelineController(cfg.Runner, cfg.Scheduler, cfg.RunTimeout)
	trigger := auth.TriggerTokenMiddleware(cfg.TriggerTokenHash, cfg.TriggerLimiter)
	router.GET("/run", trigger, pipelineController.Run)
	router.POST("/run", trigger, pipelineController.Run)

	statusController := NewStatusController(cfg.Runner, cfg.Scheduler)
	router.GET("/status", statusController.Status)

	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	return router
}
