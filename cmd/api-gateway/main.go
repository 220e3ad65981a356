package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Zookegger/ExamPro-Scheduler-sub000/api/swagger"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/handler"
	internalmiddleware "github.com/Zookegger/ExamPro-Scheduler-sub000/internal/middleware"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/repository"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/scheduling"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/service"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/cache"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/config"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/database"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/logger"
	corsmiddleware "github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/middleware/requestid"
)

// @title ExamPro Scheduler API
// @version 1.0.0
// @description Exam schedule conflict detection and resource assignment
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()
	if !cfg.Metrics.Enabled {
		metricsSvc = nil
	}

	var notifications *repository.NotificationRepository
	if cfg.Notifications.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, change notifications disabled", zap.Error(err))
		} else {
			notifications = repository.NewNotificationRepository(client, cfg.Notifications.ChannelPrefix)
			defer notifications.Close() //nolint:errcheck
		}
	}

	var publisher interface {
		Publish(ctx context.Context, resource string, payload []byte) (int64, error)
	}
	if notifications != nil {
		publisher = notifications
	}
	notifier := service.NewNotificationService(publisher, service.NotificationConfig{
		Enabled:    cfg.Notifications.Enabled,
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	}, logr.Named("notifications"))
	notifier.Start(ctx)
	defer notifier.Stop()

	validate := validator.New()
	examRepo := repository.NewExamRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	proctorRepo := repository.NewProctorAssignmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, logr.Named("auth"), service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret})
	scheduleSvc := service.NewExamScheduleService(
		examRepo,
		proctorRepo,
		db,
		scheduling.PolicyFromConfig(cfg.Scheduling),
		service.ScheduleWindowConfig{DefaultRangeDays: cfg.Scheduling.DefaultRangeDays, MaxRangeDays: cfg.Scheduling.MaxRangeDays},
		metricsSvc,
		validate,
		logr.Named("exam_schedule"),
	)
	assignmentSvc := service.NewExamAssignmentService(
		examRepo,
		roomRepo,
		registrationRepo,
		proctorRepo,
		userRepo,
		db,
		notifier,
		metricsSvc,
		validate,
		logr.Named("exam_assignment"),
	)

	examScheduleHandler := handler.NewExamScheduleHandler(scheduleSvc, assignmentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, nil)
	if notifications != nil {
		metricsHandler = handler.NewMetricsHandler(metricsSvc, db, notifications)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc))
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(authSvc))

	readers := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
	writers := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	schedule := api.Group("/exam-schedule", readers)
	schedule.GET("/conflicts", examScheduleHandler.Conflicts)
	schedule.GET("/conflicts/export", examScheduleHandler.ExportConflicts)
	schedule.GET("/overview", examScheduleHandler.Overview)

	exams := api.Group("/exams", writers)
	exams.POST("/:id/students", examScheduleHandler.AssignStudents)
	exams.POST("/:id/proctors", examScheduleHandler.AssignProctors)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
