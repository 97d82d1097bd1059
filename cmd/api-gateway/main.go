package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/gradeflow-api/api/swagger"
	"github.com/noah-isme/gradeflow-api/internal/handler"
	"github.com/noah-isme/gradeflow-api/internal/middleware"
	"github.com/noah-isme/gradeflow-api/internal/models"
	"github.com/noah-isme/gradeflow-api/internal/repository"
	"github.com/noah-isme/gradeflow-api/internal/service"
	"github.com/noah-isme/gradeflow-api/pkg/cache"
	"github.com/noah-isme/gradeflow-api/pkg/config"
	"github.com/noah-isme/gradeflow-api/pkg/database"
	"github.com/noah-isme/gradeflow-api/pkg/jobs"
	"github.com/noah-isme/gradeflow-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gradeflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gradeflow-api/pkg/middleware/requestid"
)

// @title GradeFlow API
// @version 0.1.0
// @description Grade approval workflow and transcript aggregation service
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		repo := repository.NewCacheRepository(redisClient, logr)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Cache.SummaryTTL, logr, cfg.Cache.Enabled)

	scoreRepo := repository.NewScoreRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	validate := validator.New()
	scale := models.DefaultGradingScale()

	// Ledger writes and workflow transitions serialize on the same
	// per-section lock.
	locks := service.NewSectionLocker()

	transcriptService := service.NewTranscriptService(rosterRepo, scoreRepo, workflowRepo, cacheService, scale, cfg.Cache.TranscriptTTL, logr)

	publishQueue := jobs.NewQueue("transcript-refresh", func(ctx context.Context, job jobs.Job) error {
		sectionID, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return transcriptService.RefreshSection(ctx, sectionID)
	}, jobs.QueueConfig{
		Workers:    cfg.Publish.Workers,
		MaxRetries: cfg.Publish.MaxRetries,
		RetryDelay: cfg.Publish.RetryDelay,
		Logger:     logr,
	})
	publishQueue.Start(context.Background())
	defer publishQueue.Stop()

	gradeService := service.NewGradeService(scoreRepo, workflowRepo, rosterRepo, cacheService, locks, scale, cfg.Grading.PassingFloor, cfg.Cache.SummaryTTL, validate, logr)
	workflowService := service.NewWorkflowService(workflowRepo, rosterRepo, cacheService, locks, publishQueue, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, rosterRepo, cfg.Attendance.SatisfactoryThreshold, validate, logr)
	authService := service.NewAuthService(cfg.JWT.Secret)

	gradeHandler := handler.NewGradeHandler(gradeService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	transcriptHandler := handler.NewTranscriptHandler(transcriptService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authService))

	sections := api.Group("/sections/:id")
	{
		sections.POST("/grades/bulk", middleware.RequireRoles(models.RoleTeacher), gradeHandler.SubmitBulk)
		sections.GET("/grades", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), gradeHandler.ListLedger)
		sections.GET("/grades/summary", gradeHandler.Summary)
		sections.GET("/grades/summary/export", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), gradeHandler.ExportSummary)
		sections.POST("/workflow", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), workflowHandler.Transition)
		sections.GET("/workflow", workflowHandler.Get)
		sections.POST("/attendance/bulk", middleware.RequireRoles(models.RoleTeacher), attendanceHandler.SubmitBulk)
	}

	students := api.Group("/students/:id")
	{
		students.GET("/transcript", middleware.RBAC(string(models.RoleAdmin), "SELF"), transcriptHandler.Get)
		students.GET("/transcript/export", middleware.RBAC(string(models.RoleAdmin), "SELF"), transcriptHandler.Export)
	}

	api.GET("/enrollments/:id/attendance/summary", attendanceHandler.Summary)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
