package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sisacad/sisacad-api/api/swagger"
	"github.com/sisacad/sisacad-api/internal/handler"
	"github.com/sisacad/sisacad-api/internal/middleware"
	"github.com/sisacad/sisacad-api/internal/repository"
	"github.com/sisacad/sisacad-api/internal/service"
	"github.com/sisacad/sisacad-api/pkg/cache"
	"github.com/sisacad/sisacad-api/pkg/config"
	"github.com/sisacad/sisacad-api/pkg/database"
	"github.com/sisacad/sisacad-api/pkg/jobs"
	"github.com/sisacad/sisacad-api/pkg/lock"
	"github.com/sisacad/sisacad-api/pkg/logger"
	corsmiddleware "github.com/sisacad/sisacad-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sisacad/sisacad-api/pkg/middleware/requestid"
)

// @title SISACAD API
// @version 1.0.0
// @description Scheduling and enrollment engine for the academic records system
// @BasePath /api/v1
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, eligible sections cache disabled", "error", err)
		redisClient = nil
	}

	queue := jobs.NewQueue(jobs.Options{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	}, logr)

	catalogRepo := repository.NewCatalogRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	prereqRepo := repository.NewPrerequisiteRepository(db)
	blockRepo := repository.NewScheduleBlockRepository(db)
	cascadeRepo := repository.NewCascadeRepository(db)

	locks := lock.NewKeyed()
	metricsSvc := service.NewMetricsService()
	dispatcher := service.NewNotificationDispatcher(queue, logr)

	assignmentSvc := service.NewAssignmentService(assignmentRepo, catalogRepo, blockRepo, locks, metricsSvc, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(service.EnrollmentServiceDeps{
		Repo:         enrollmentRepo,
		Assignments:  assignmentRepo,
		Catalog:      catalogRepo,
		Grades:       gradeRepo,
		Prereqs:      prereqRepo,
		Notifier:     dispatcher,
		Metrics:      metricsSvc,
		Cache:        redisClient,
		CacheTTL:     cfg.Academic.EligibleCacheTTL,
		PassingGrade: cfg.Academic.PassingGrade,
		Locks:        locks,
		Logger:       logr,
	})
	cascadeSvc := service.NewCascadeService(cascadeRepo, catalogRepo, blockRepo, logr)
	catalogSvc := service.NewCatalogService(catalogRepo, logr)
	blockSvc := service.NewBlockService(blockRepo, nil, logr)
	prereqSvc := service.NewPrerequisiteService(prereqRepo, catalogRepo, nil, logr)
	exportSvc := service.NewScheduleExportService(enrollmentSvc, logr)

	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, exportSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	blockHandler := handler.NewBlockHandler(blockSvc, cascadeSvc)
	sectionHandler := handler.NewSectionHandler(cascadeSvc)
	prereqHandler := handler.NewPrerequisiteHandler(prereqSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/assignments", assignmentHandler.List)
		api.POST("/assignments", assignmentHandler.Create)
		api.PUT("/assignments/:id", assignmentHandler.Update)

		api.POST("/enrollments", enrollmentHandler.Enroll)
		api.POST("/enrollments/:id/withdraw", enrollmentHandler.Withdraw)
		api.DELETE("/enrollments/:id", enrollmentHandler.Unenroll)

		api.GET("/students/:id/eligible-sections", enrollmentHandler.EligibleSections)
		api.GET("/students/:id/schedule", enrollmentHandler.Schedule)
		api.GET("/students/:id/schedule/export", enrollmentHandler.ExportSchedule)

		api.GET("/cycles/current", enrollmentHandler.CurrentCycle)

		api.GET("/catalog/courses", catalogHandler.ListCourses)
		api.GET("/catalog/courses/with-prerequisites", prereqHandler.ListWithPrerequisites)
		api.GET("/catalog/courses/:id", catalogHandler.GetCourse)
		api.GET("/catalog/courses/:id/prerequisites", prereqHandler.ListForCourse)
		api.DELETE("/catalog/courses/:id/prerequisites", prereqHandler.DeleteForCourse)
		api.GET("/catalog/rooms", catalogHandler.ListRooms)
		api.GET("/catalog/sections", catalogHandler.ListSections)
		api.GET("/catalog/teachers", catalogHandler.ListTeachers)

		api.GET("/blocks", blockHandler.List)
		api.GET("/blocks/next-code", blockHandler.NextCode)
		api.POST("/blocks", blockHandler.Create)
		api.PUT("/blocks/:id", blockHandler.Update)
		api.GET("/blocks/:id/cascade", blockHandler.CascadePlan)
		api.DELETE("/blocks/:id", blockHandler.Delete)

		api.GET("/sections/:id/cascade", sectionHandler.CascadePlan)
		api.DELETE("/sections/:id", sectionHandler.Delete)

		api.POST("/prerequisites", prereqHandler.Create)
		api.DELETE("/prerequisites/:id", prereqHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("queue shutdown failed", "error", err)
	}
}
