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

	_ "github.com/securemath/securemath-api/api/swagger"
	"github.com/securemath/securemath-api/internal/handler"
	"github.com/securemath/securemath-api/internal/middleware"
	"github.com/securemath/securemath-api/internal/models"
	"github.com/securemath/securemath-api/internal/repository"
	"github.com/securemath/securemath-api/internal/service"
	"github.com/securemath/securemath-api/pkg/cache"
	"github.com/securemath/securemath-api/pkg/config"
	"github.com/securemath/securemath-api/pkg/database"
	"github.com/securemath/securemath-api/pkg/jobs"
	"github.com/securemath/securemath-api/pkg/logger"
	corsmiddleware "github.com/securemath/securemath-api/pkg/middleware/cors"
	reqidmiddleware "github.com/securemath/securemath-api/pkg/middleware/requestid"
	"github.com/securemath/securemath-api/pkg/storage"
	"github.com/securemath/securemath-api/pkg/video"
)

// @title SecureMath Content API
// @version 0.1.0
// @description Content access and assessment integrity API
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
		logr.Sugar().Warnw("redis unavailable, question cache disabled", "error", err)
		redisClient = nil
	}

	mediaStore, err := storage.NewLocalStorage(cfg.Video.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init media storage", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	deviceRepo := repository.NewDeviceRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	videoRepo := repository.NewVideoAssetRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	var cacheSvc *service.CacheService
	if redisClient != nil && cfg.Cache.Enabled {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.QuestionTTL, logr, true)
	}

	// Services.
	authSvc := service.NewAuthService(service.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})
	deviceSvc := service.NewDeviceService(deviceRepo, metricsSvc, cfg.Content.DeviceLimit, logr)
	signer := storage.NewSignedURLSigner(cfg.Content.SigningSecret, cfg.Content.GrantExpiry)
	signedURLSvc := service.NewSignedURLService(signer, cfg.Content.CDNBaseURL, logr)
	watermarkSvc := service.NewWatermarkService(cfg.Content.WatermarkBucket)
	playbackSvc := service.NewPlaybackService(lessonRepo, courseRepo, enrollmentRepo, videoRepo, grantRepo,
		signedURLSvc, watermarkSvc, metricsSvc, cfg.Content.GrantExpiry, logr)
	gradingSvc := service.NewGradingService(quizRepo, cacheSvc, metricsSvc, cfg.Cache.QuestionTTL, logr)
	quizSvc := service.NewQuizService(quizRepo, attemptRepo, enrollmentRepo, gradingSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, lessonRepo, enrollmentRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, validate, logr)
	exportSvc := service.NewExportService(attemptRepo, quizRepo, nil, nil, logr)

	transcoder := video.NewFFmpegTranscoder(cfg.Video.FFmpegPath)
	videoSvc := service.NewVideoService(videoRepo, mediaStore, transcoder, jobs.QueueConfig{
		Workers:    cfg.Video.WorkerConcurrency,
		MaxRetries: cfg.Video.WorkerRetries,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	videoSvc.Start(ctx)
	defer videoSvc.Stop()

	// Expired grants are audit rows; keep them for a day past expiry, then sweep.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := playbackSvc.SweepExpiredGrants(ctx, 24*time.Hour); err != nil {
					logr.Sugar().Warnw("grant sweep failed", "error", err)
				}
			}
		}
	}()

	// Handlers.
	courseHandler := handler.NewCourseHandler(courseSvc)
	playbackHandler := handler.NewPlaybackHandler(playbackSvc)
	quizHandler := handler.NewQuizHandler(quizSvc)
	gradeHandler := handler.NewGradeHandler(quizSvc, exportSvc)
	deviceHandler := handler.NewDeviceHandler(deviceSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	videoHandler := handler.NewVideoHandler(videoSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	contentHandler := handler.NewContentHandler(signedURLSvc, mediaStore)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	// Signed-URL origin. The token carries its own authorization, so this
	// sits outside the JWT-protected API group.
	r.GET("/content/*key", contentHandler.Manifest)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	student := api.Group("/student")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	student.Use(middleware.DeviceGate(deviceSvc))
	{
		student.GET("/courses", courseHandler.List)
		student.GET("/courses/:id", courseHandler.Detail)
		student.GET("/courses/:id/quizzes", quizHandler.ListForCourse)
		student.POST("/lessons/:id/playback", playbackHandler.Grant)
		student.GET("/quizzes/:id", quizHandler.Get)
		student.POST("/quizzes/:id/submit", quizHandler.Submit)
		student.GET("/grades", gradeHandler.List)
		student.GET("/grades/report", gradeHandler.Report)
		student.GET("/devices", deviceHandler.List)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/enrollments", enrollmentHandler.Create)
		admin.DELETE("/enrollments/:id", enrollmentHandler.Remove)
		admin.DELETE("/devices/:id", deviceHandler.Revoke)
		admin.POST("/videos", videoHandler.Upload)
		admin.GET("/videos/:id", videoHandler.Status)
		admin.POST("/videos/:id/requeue", videoHandler.Requeue)
		admin.GET("/grants", playbackHandler.Audit)
		admin.GET("/quizzes/:id/attempts/export", exportHandler.QuizAttempts)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
