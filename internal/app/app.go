package app

import (
	"academy_backend/internal/config"
	"academy_backend/internal/controller"
	"academy_backend/internal/repository"
	"academy_backend/internal/service"
	"academy_backend/internal/util"
	"academy_backend/pkg/configwatcher"
	"academy_backend/pkg/database"
	"academy_backend/pkg/logger"
	"academy_backend/pkg/monitoring"
	"academy_backend/pkg/security"
	"academy_backend/pkg/tracing"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Store           *repository.Store
	services        *services
	rateLimiter     *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type services struct {
	auth         *service.AuthService
	tokens       service.TokenStore
	user         *service.UserService
	course       *service.CourseService
	lesson       *service.LessonService
	assignment   *service.AssignmentService
	feedback     *service.FeedbackService
	certificate  *service.CertificateService
	questionPool *service.QuestionPoolService
	media        *service.MediaService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	course       *controller.CourseController
	lesson       *controller.LessonController
	assignment   *controller.AssignmentController
	feedback     *controller.FeedbackController
	certificate  *controller.CertificateController
	questionPool *controller.QuestionPoolController
	media        *controller.MediaController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initServices(store *repository.Store, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.tokens = service.NewTokenStore(rdb)
	s.auth = service.NewAuthService(store, s.tokens, &cfg.JWT)
	s.user = service.NewUserService(store, service.NewMailer(&cfg.Mail), cfg.Mail.AppName)
	s.course = service.NewCourseService(store)
	s.lesson = service.NewLessonService(store)
	s.assignment = service.NewAssignmentService(store)
	s.feedback = service.NewFeedbackService(store)
	s.certificate = service.NewCertificateService(store)
	s.questionPool = service.NewQuestionPoolService(store)
	s.media = service.NewMediaService(service.NewStorageProvider(&cfg.Storage), cfg.Media.MaxUploadMB)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, s.user),
		user:         controller.NewUserController(s.user),
		course:       controller.NewCourseController(s.course),
		lesson:       controller.NewLessonController(s.lesson),
		assignment:   controller.NewAssignmentController(s.assignment),
		feedback:     controller.NewFeedbackController(s.feedback),
		certificate:  controller.NewCertificateController(s.certificate),
		questionPool: controller.NewQuestionPoolController(s.questionPool),
		media:        controller.NewMediaController(s.media),
		health:       controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.rateLimiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.rateLimiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerReloadCallbacks applies the settings that can change without a restart.
func (a *App) registerReloadCallbacks() {
	a.RegisterConfigCallback(logger.SetLevel)
	a.RegisterConfigCallback(func(cfg *config.Config) {
		service.SetPageLimits(cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.rateLimiter.SetLimit(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	})
}

func (a *App) reload(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	util.InitValidator()

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	app.Store = repository.NewStore(db)
	service.SetPageLimits(cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)

	app.services = app.initServices(app.Store, cfg, rdb)
	controllers := app.initControllers(app.services)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("academy-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.registerReloadCallbacks()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	go func() {
		if err := configwatcher.WatchConfig(watchCtx, configDir+"/config.yaml", a.reload); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
