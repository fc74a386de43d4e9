package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/civilink/civilink-backend/internal/clients/redis"
	"github.com/civilink/civilink-backend/internal/db"
	"github.com/civilink/civilink-backend/internal/handlers"
	"github.com/civilink/civilink-backend/internal/jobs"
	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/middleware"
	"github.com/civilink/civilink-backend/internal/repos"
	"github.com/civilink/civilink-backend/internal/server"
	"github.com/civilink/civilink-backend/internal/services"
	"github.com/civilink/civilink-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	officerRepo := repos.NewOfficerRepo(thePG, log)
	conversationRepo := repos.NewConversationRepo(thePG, log)
	applicationRepo := repos.NewApplicationRepo(thePG, log)
	monthlyRepo := repos.NewOfficerStatsMonthlyRepo(thePG, log)
	cumulativeRepo := repos.NewOfficerStatsCumulativeRepo(thePG, log)
	globalMaxRepo := repos.NewGlobalMaxScoreRepo(thePG, log)

	// Clients
	var reportCache redis.ReportCache
	if os.Getenv("REDIS_ADDR") != "" {
		reportCache, err = redis.NewReportCache(log)
		if err != nil {
			log.Warn("Could not init report cache, continuing without it", "error", err)
			reportCache = nil
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	monthlyStatsService := services.NewMonthlyStatsService(thePG, log, conversationRepo, applicationRepo, officerRepo, monthlyRepo)
	cumulativeStatsService := services.NewCumulativeStatsService(thePG, log, officerRepo, monthlyRepo, cumulativeRepo)
	baselineService := services.NewScoreBaselineService(thePG, log, monthlyRepo, cumulativeRepo, globalMaxRepo)
	performanceService := services.NewPerformanceService(thePG, log, officerRepo, monthlyRepo, cumulativeRepo, baselineService)
	analyticsService := services.NewAnalyticsService(thePG, log, conversationRepo, applicationRepo, monthlyStatsService, cumulativeStatsService, baselineService)

	// Jobs
	lookbackMonths := utils.GetEnvAsInt("ANALYTICS_LOOKBACK_MONTHS", services.DefaultLookbackMonths, log)
	analyticsJob := jobs.NewAnalyticsJob(log, analyticsService, reportCache, lookbackMonths)
	if err := analyticsJob.Start(context.Background()); err != nil {
		log.Fatal("Could not start analytics job", "error", err)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	performanceHandler := handlers.NewPerformanceHandler(log, performanceService, analyticsJob, reportCache)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:     authMiddleware,
		PerformanceHandler: performanceHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
