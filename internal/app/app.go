package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mock_interview_backend/internal/config"
	"mock_interview_backend/internal/controller"
	"mock_interview_backend/internal/interview"
	"mock_interview_backend/internal/repository"
	"mock_interview_backend/internal/service"
	"mock_interview_backend/internal/util"
	"mock_interview_backend/pkg/configwatcher"
	"mock_interview_backend/pkg/database"
	"mock_interview_backend/pkg/logger"
	"mock_interview_backend/pkg/monitoring"
	"mock_interview_backend/pkg/security"
	"mock_interview_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	interview *repository.InterviewRepository
	answer    *repository.AnswerRepository
	sessions  *repository.CachedSessionSource
}

type services struct {
	ai        *service.AIService
	storage   *service.StorageService
	grading   *service.GradingService
	interview *service.InterviewService
	live      *service.LiveService
}

type controllers struct {
	interview *controller.InterviewController
	live      *controller.LiveController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	interviews := repository.NewInterviewRepository(db)

	// 有 Redis 时多实例共享缓存，否则退回进程内缓存
	var cache repository.SessionCache
	if rdb != nil {
		cache = repository.NewRedisSessionCache(rdb, cfg.Interview.CacheTTL)
	} else {
		cache = repository.NewLocalSessionCache(cfg.Interview.CacheTTL)
	}

	return &repositories{
		interview: interviews,
		answer:    repository.NewAnswerRepository(db),
		sessions:  repository.NewCachedSessionSource(interviews, cache, logger.Log),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	loader := interview.NewLoader(repos.sessions, logger.Log.Named("loader"))

	s.storage = service.NewStorageService(&cfg.Storage)
	s.ai = service.NewAIService(cfg.AI)
	s.grading = service.NewGradingService(s.ai, repos.answer, logger.Log.Named("grading"))
	s.interview = service.NewInterviewService(
		repos.interview,
		repos.answer,
		loader,
		s.ai,
		s.storage,
		cfg.Interview.QuestionCount,
		logger.Log.Named("interview"),
	)
	s.live = service.NewLiveService(
		loader,
		s.grading,
		cfg.Interview.CaptureConfig(),
		cfg.Interview.LiveIdleTTL,
		logger.Log.Named("live"),
	)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.live.UpdateCaptureConfig(newCfg.Interview.CaptureConfig())
	})

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		interview: controller.NewInterviewController(s.interview),
		live:      controller.NewLiveController(s.live, a.Config),
		health:    controller.NewHealthController(a.DB, a.Redis, s.live),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window, security.ByClientIP))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	if err := s.live.StartSweeper(cfg.Interview.SweepSchedule); err != nil {
		logger.Log.Error("Failed to start live interview sweeper", zap.Error(err))
	}
}

// Migrate 只执行数据库迁移
func Migrate(cfg *config.Config) error {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return err
	}
	return database.Migrate(db)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式默认不自动迁移，除非显式指定
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 配置热更新
	stopWatch := make(chan struct{})
	go func() {
		err := configwatcher.WatchConfig(a.Config.Path, stopWatch, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher disabled", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	close(stopWatch)

	// 关闭进行中的面试与 WebSocket 连接
	if a.services != nil && a.services.live != nil {
		a.services.live.Close()
	}

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
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	logger.Log.Sync()
}
