// Package server assembles the HTTP router from global middleware and the
// registered modules.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/cinelog/internal/config"
	"github.com/mantonx/cinelog/internal/database"
	"github.com/mantonx/cinelog/internal/logger"
	"github.com/mantonx/cinelog/internal/middleware"
	"github.com/mantonx/cinelog/internal/modules/modulemanager"

	// Modules register themselves on import.
	_ "github.com/mantonx/cinelog/internal/modules/moviemodule"
	_ "github.com/mantonx/cinelog/internal/modules/usermodule"
)

// SetupRouter builds the router, loads all modules, and mounts their routes.
func SetupRouter() (*gin.Engine, error) {
	cfg := config.Get()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorLogger())

	if cfg.Server.EnableCORS {
		router.Use(corsMiddleware())
	}
	if cfg.Server.RateLimitEnabled {
		router.Use(middleware.RateLimit(cfg.Server.RateLimitRPM))
	}

	router.GET("/api/health", healthHandler)

	if err := modulemanager.LoadAll(database.GetDB()); err != nil {
		return nil, err
	}
	modulemanager.RegisterAllRoutes(router)

	for _, m := range modulemanager.ListModules() {
		logger.Info("Module mounted: %s", m.ID())
	}

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func healthHandler(c *gin.Context) {
	status := gin.H{
		"status":  "healthy",
		"service": "cinelog",
	}

	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}

	c.JSON(http.StatusOK, status)
}
