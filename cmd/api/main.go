package main

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	_ "github.com/eduspark/edu-platform-api/api/swagger"
	"github.com/eduspark/edu-platform-api/internal/handler"
	"github.com/eduspark/edu-platform-api/internal/repository"
	"github.com/eduspark/edu-platform-api/internal/router"
	"github.com/eduspark/edu-platform-api/internal/service"
	"github.com/eduspark/edu-platform-api/pkg/ai"
	"github.com/eduspark/edu-platform-api/pkg/cache"
	"github.com/eduspark/edu-platform-api/pkg/config"
	"github.com/eduspark/edu-platform-api/pkg/database"
	"github.com/eduspark/edu-platform-api/pkg/logger"
	"github.com/eduspark/edu-platform-api/pkg/response"
)

// @title EduSpark Platform API
// @version 1.0.0
// @description School management backend: registrations, allocations, dashboards and reporting
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	response.SetDebug(cfg.Env != config.EnvProduction)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		}
	}

	userRepo := repository.NewUserRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	eventRepo := repository.NewEventRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, registrationRepo, activityRepo, validator.New(), logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	approvalSvc := service.NewApprovalService(registrationRepo, userRepo, activityRepo, logr)
	userSvc := service.NewUserService(userRepo, activityRepo, logr)
	allocationSvc := service.NewAllocationService(allocationRepo, catalogRepo, userRepo, activityRepo, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, allocationRepo, activityRepo, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, activityRepo, logr)
	eventSvc := service.NewEventService(eventRepo, logr)
	exportSvc := service.NewExportService(userRepo, attendanceRepo, logr)
	dashboardSvc := service.NewDashboardService(
		userRepo,
		registrationRepo,
		attendanceRepo,
		activityRepo,
		assignmentRepo,
		allocationRepo,
		cacheSvc,
		service.DashboardConfig{
			CacheTTL:  cfg.Dashboard.CacheTTL,
			TrendDays: cfg.Dashboard.TrendDays,
			ToolTopN:  cfg.Dashboard.ToolUsageTopN,
		},
		logr,
	)

	aiSvc := service.NewAIService(nil, activityRepo, logr)
	if cfg.AI.APIKey != "" {
		aiClient, err := ai.NewClient(ai.Config{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			MaxTokens:   cfg.AI.MaxTokens,
			Temperature: float32(cfg.AI.Temperature),
			Greetings:   cfg.AI.Greetings,
			Logger:      logr,
		})
		if err != nil {
			logr.Sugar().Warnw("ai client unavailable", "error", err)
		} else {
			aiSvc = service.NewAIService(aiClient, activityRepo, logr)
		}
	}

	engine := router.New(router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Registrations: handler.NewRegistrationHandler(approvalSvc),
		Users:         handler.NewUserHandler(userSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Allocations:   handler.NewAllocationHandler(allocationSvc),
		Assignments:   handler.NewAssignmentHandler(assignmentSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Events:        handler.NewEventHandler(eventSvc),
		AI:            handler.NewAIHandler(aiSvc),
		Exports:       handler.NewExportHandler(exportSvc),
	}, router.Options{
		Config:  cfg,
		Logger:  logr,
		Auth:    authSvc,
		Trail:   activityRepo,
		Metrics: metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := engine.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
