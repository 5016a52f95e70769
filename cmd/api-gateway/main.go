package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/uni-academic-api/api/swagger"
	"github.com/noah-isme/uni-academic-api/internal/handler"
	"github.com/noah-isme/uni-academic-api/internal/middleware"
	"github.com/noah-isme/uni-academic-api/internal/repository"
	"github.com/noah-isme/uni-academic-api/internal/service"
	"github.com/noah-isme/uni-academic-api/pkg/cache"
	"github.com/noah-isme/uni-academic-api/pkg/config"
	"github.com/noah-isme/uni-academic-api/pkg/database"
	"github.com/noah-isme/uni-academic-api/pkg/jobs"
	"github.com/noah-isme/uni-academic-api/pkg/logger"
	"github.com/noah-isme/uni-academic-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/uni-academic-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-academic-api/pkg/middleware/requestid"
	"github.com/noah-isme/uni-academic-api/pkg/scheduler"
	"github.com/noah-isme/uni-academic-api/pkg/storage"
)

// @title University Academic Records API
// @version 1.0.0
// @description Student transcripts, fee ledgers and payments for the university portal.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, payment idempotency disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	recordRepo := repository.NewAcademicRecordRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		redisRepo := repository.NewCacheRepository(redisClient)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Idempotency.TTL, logr)

	notifications := service.NewNotificationService(notificationRepo, studentRepo, feeRepo, newMailer(cfg, logr), metrics, logr)
	queue := jobs.NewQueue("notifications", notifications.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.Retries,
		RetryDelay: cfg.Notify.RetryDelay,
		OnGiveUp:   notifications.HandleGiveUp,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	notifications.AttachQueue(queue)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, validate, logr)
	recordSvc := service.NewAcademicRecordService(recordRepo, enrollmentRepo, studentRepo, userRepo, validate, logr)
	feeSvc := service.NewFeeService(feeRepo, studentRepo, userRepo, validate, logr)
	transcriptSvc := service.NewTranscriptService(studentRepo, recordRepo, enrollmentRepo, metrics, logr)
	exportSvc := service.NewTranscriptExportService(transcriptSvc, exportStore, signer,
		cfg.Exports.PublicBaseURL+cfg.APIPrefix+"/export", metrics, validate, logr)
	financeSvc := service.NewFinanceService(studentRepo, feeRepo, paymentRepo, cacheSvc, notifications, userRepo,
		metrics, validate, logr, service.FinanceConfig{IdempotencyTTL: cfg.Idempotency.TTL})

	sched := scheduler.New(logr, 10*time.Minute)
	if cfg.OverdueSweep.Enabled {
		if err := sched.Register("overdue_fee_sweep", cfg.OverdueSweep.Spec, func(ctx context.Context) error {
			_, err := notifications.SweepOverdue(ctx)
			return err
		}); err != nil {
			return err
		}
	}
	if err := sched.Register("export_cleanup", cfg.Exports.CleanupSpec, func(ctx context.Context) error {
		removed, err := exportStore.CleanupOlderThan(cfg.Exports.Retention)
		if len(removed) > 0 {
			logr.Info("expired exports removed", zap.Int("count", len(removed)))
		}
		return err
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	system := handler.NewMetricsHandler(metrics, readinessChecks(db, cacheRepo))
	r.GET("/health", system.Health)
	r.GET("/ready", system.Ready)
	r.GET("/metrics", system.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:            handler.NewAuthHandler(authSvc),
		Users:           handler.NewUserHandler(userSvc),
		Students:        handler.NewStudentHandler(studentSvc),
		Courses:         handler.NewCourseHandler(courseSvc),
		Enrollments:     handler.NewEnrollmentHandler(enrollmentSvc),
		AcademicRecords: handler.NewAcademicRecordHandler(recordSvc),
		Fees:            handler.NewFeeHandler(feeSvc),
		Transcripts:     handler.NewTranscriptHandler(transcriptSvc, exportSvc, studentSvc),
		Finance:         handler.NewFinanceHandler(financeSvc, studentSvc),
	}, handler.RouteDeps{
		Tokens:   authSvc,
		Students: studentSvc,
		Audit:    userRepo,
		Logger:   logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newMailer(cfg *config.Config, logr *zap.Logger) mailer.Mailer {
	if !cfg.Notify.Enabled || cfg.Notify.SendgridAPIKey == "" {
		logr.Info("email delivery disabled, notifications are logged")
		return mailer.NewLogMailer(logr)
	}
	return mailer.NewSendGridMailer(cfg.Notify.SendgridAPIKey, mail.Address{Name: cfg.Notify.FromName, Address: cfg.Notify.FromAddress})
}

func readinessChecks(db *sqlx.DB, cacheRepo service.CacheRepository) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if pinger, ok := cacheRepo.(interface{ Ping(context.Context) error }); ok {
		checks["redis"] = pinger.Ping
	}
	return checks
}
