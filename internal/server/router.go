package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/civilink/civilink-backend/internal/handlers"
	"github.com/civilink/civilink-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware     *middleware.AuthMiddleware
	PerformanceHandler *handlers.PerformanceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Gateway-Role"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	metrics := api.Group("/metrics", cfg.AuthMiddleware.RequireRole("admin"))
	{
		metrics.GET("/performance", cfg.PerformanceHandler.GetAggregatedPerformance)
		metrics.GET("/performance/officers", cfg.PerformanceHandler.GetPaginatedOfficerStats)
		metrics.POST("/performance/refresh", cfg.PerformanceHandler.TriggerRefresh)
	}

	return router
}
